/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package seed builds the bundled read-only configuration database: the full
// 78-card deck, spreads, reading dimensions, interpretations for both card
// directions and zh-CN translations for all of it. The output file is what
// the app ships as its seed asset and what the test suite uses as a fixture.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tarotvault/internal/domain"
)

// configSchemaDDL mirrors the fixed table contract of the config database.
var configSchemaDDL = []string{
	`CREATE TABLE card_style (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL UNIQUE,
		image_base_url TEXT NOT NULL
	);`,
	`CREATE TABLE card (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		name      TEXT NOT NULL,
		arcana    TEXT NOT NULL CHECK (arcana IN ('major','minor')),
		suit      TEXT NOT NULL DEFAULT '',
		number    INTEGER NOT NULL,
		image_url TEXT NOT NULL,
		style_id  INTEGER NOT NULL REFERENCES card_style(id),
		deck      TEXT NOT NULL
	);`,
	`CREATE TABLE dimension (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		category    TEXT NOT NULL,
		description TEXT NOT NULL,
		aspect      TEXT NOT NULL DEFAULT '',
		aspect_type TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE card_interpretation (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		card_id INTEGER NOT NULL REFERENCES card(id),
		direction TEXT NOT NULL CHECK (direction IN ('upright','reversed')),
		summary TEXT NOT NULL,
		detail  TEXT NOT NULL,
		UNIQUE (card_id, direction)
	);`,
	`CREATE TABLE card_interpretation_dimension (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		interpretation_id INTEGER NOT NULL REFERENCES card_interpretation(id),
		dimension_id      INTEGER NOT NULL REFERENCES dimension(id),
		aspect            TEXT NOT NULL DEFAULT '',
		aspect_type       TEXT NOT NULL DEFAULT '',
		content           TEXT NOT NULL,
		UNIQUE (interpretation_id, dimension_id)
	);`,
	`CREATE TABLE spread (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		card_count  INTEGER NOT NULL
	);`,
	`CREATE TABLE card_translation (
		card_id INTEGER NOT NULL REFERENCES card(id),
		locale  TEXT NOT NULL,
		name    TEXT NOT NULL,
		deck    TEXT NOT NULL DEFAULT '',
		suit    TEXT NOT NULL DEFAULT '',
		UNIQUE (card_id, locale)
	);`,
	`CREATE TABLE spread_translation (
		spread_id   INTEGER NOT NULL REFERENCES spread(id),
		locale      TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		UNIQUE (spread_id, locale)
	);`,
	`CREATE TABLE card_interpretation_translation (
		interpretation_id INTEGER NOT NULL REFERENCES card_interpretation(id),
		locale    TEXT NOT NULL,
		summary   TEXT NOT NULL,
		detail    TEXT NOT NULL,
		direction TEXT NOT NULL,
		UNIQUE (interpretation_id, locale)
	);`,
	`CREATE TABLE dimension_translation (
		dimension_id INTEGER NOT NULL REFERENCES dimension(id),
		locale       TEXT NOT NULL,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL,
		aspect       TEXT NOT NULL DEFAULT '',
		category     TEXT NOT NULL DEFAULT '',
		UNIQUE (dimension_id, locale)
	);`,
	`CREATE TABLE card_interpretation_dimension_translation (
		dimension_interpretation_id INTEGER NOT NULL REFERENCES card_interpretation_dimension(id),
		locale  TEXT NOT NULL,
		aspect  TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		UNIQUE (dimension_interpretation_id, locale)
	);`,
}

type majorCard struct {
	name       string
	zhName     string
	upright    string
	reversed   string
	zhUpright  string
	zhReversed string
}

var majors = []majorCard{
	{"The Fool", "愚者", "new beginnings, spontaneity, a leap of faith", "recklessness, hesitation, a false start", "新的开始，率性而为", "鲁莽，犹豫不决"},
	{"The Magician", "魔术师", "willpower, resourcefulness, manifestation", "manipulation, scattered energy, untapped talent", "意志力，化想法为现实", "操纵，精力分散"},
	{"The High Priestess", "女祭司", "intuition, inner knowledge, stillness", "secrets withheld, disconnected instincts", "直觉，内在的智慧", "隐瞒，与直觉失联"},
	{"The Empress", "女皇", "abundance, nurture, creative growth", "dependence, creative block, smothering", "丰饶，滋养与创造", "依赖，创造力受阻"},
	{"The Emperor", "皇帝", "structure, authority, stability", "rigidity, domination, loss of control", "秩序，权威与稳定", "僵化，控制欲过强"},
	{"The Hierophant", "教皇", "tradition, guidance, shared values", "dogma questioned, unconventional paths", "传统，精神指引", "质疑教条，另辟蹊径"},
	{"The Lovers", "恋人", "union, alignment, a heartfelt choice", "disharmony, misaligned values, avoidance", "结合，发自内心的选择", "失和，价值观分歧"},
	{"The Chariot", "战车", "determination, directed momentum, victory", "loss of direction, opposition, stalling", "决心，势如破竹", "失去方向，停滞不前"},
	{"Strength", "力量", "quiet courage, patience, compassion", "self-doubt, raw emotion, depletion", "内在的勇气与耐心", "自我怀疑，情绪失控"},
	{"The Hermit", "隐士", "introspection, solitude, inner counsel", "isolation, withdrawal, lost perspective", "内省，独处的智慧", "孤立，迷失视角"},
	{"Wheel of Fortune", "命运之轮", "cycles turning, luck, a pivotal moment", "resistance to change, a downturn", "时运流转，关键转折", "抗拒变化，运势低迷"},
	{"Justice", "正义", "fairness, accountability, cause and effect", "imbalance, avoidance of truth", "公正，因果分明", "失衡，回避真相"},
	{"The Hanged Man", "倒吊人", "surrender, a new vantage point, pause", "stalling, needless sacrifice", "放下，换个角度看", "拖延，无谓的牺牲"},
	{"Death", "死神", "endings, transformation, release", "clinging on, stagnation, fear of change", "终结与蜕变", "执着不放，停滞"},
	{"Temperance", "节制", "balance, moderation, patient blending", "excess, imbalance, impatience", "平衡，恰到好处", "过度，失去分寸"},
	{"The Devil", "恶魔", "attachment, temptation, self-imposed limits", "breaking free, reclaiming power", "束缚与诱惑", "挣脱枷锁，夺回主导"},
	{"The Tower", "高塔", "sudden upheaval, revelation, collapse", "disaster averted, delayed reckoning", "骤变与崩塌", "侥幸避祸，清算延迟"},
	{"The Star", "星星", "hope, renewal, quiet confidence", "discouragement, faith tested", "希望与疗愈", "灰心，信念受考验"},
	{"The Moon", "月亮", "uncertainty, dreams, the subconscious", "clarity emerging, fears receding", "朦胧不明，潜意识", "迷雾渐散，恐惧退去"},
	{"The Sun", "太阳", "vitality, success, unclouded joy", "dimmed optimism, delayed success", "活力与成功", "乐观蒙尘，成功延后"},
	{"Judgement", "审判", "awakening, reckoning, a clear call", "self-judgment, ignoring the call", "觉醒与召唤", "自我苛责，充耳不闻"},
	{"The World", "世界", "completion, integration, arrival", "loose ends, an unfinished chapter", "圆满与抵达", "未竟之事，悬而未决"},
}

type suitDef struct {
	name    string
	zhName  string
	theme   string
	zhTheme string
}

var suits = []suitDef{
	{"Wands", "权杖", "creative drive and will", "创造力与意志"},
	{"Cups", "圣杯", "emotion and relationship", "情感与关系"},
	{"Swords", "宝剑", "thought and conflict", "思维与冲突"},
	{"Pentacles", "星币", "work and material life", "事业与物质"},
}

type rankDef struct {
	name    string
	zhName  string
	theme   string
	zhTheme string
}

var ranks = []rankDef{
	{"Ace", "王牌", "a fresh spark of", "崭新的开端"},
	{"Two", "二", "a choice within", "面临抉择"},
	{"Three", "三", "early growth of", "初步的成长"},
	{"Four", "四", "stability in", "趋于稳定"},
	{"Five", "五", "friction around", "摩擦与考验"},
	{"Six", "六", "restored harmony in", "重归和谐"},
	{"Seven", "七", "a reassessment of", "重新评估"},
	{"Eight", "八", "swift movement in", "快速推进"},
	{"Nine", "九", "near fruition of", "接近收获"},
	{"Ten", "十", "the completion of", "圆满落幕"},
	{"Page", "侍从", "curious first steps in", "好奇的起步"},
	{"Knight", "骑士", "bold pursuit of", "大胆的追寻"},
	{"Queen", "王后", "mature command of", "成熟的掌握"},
	{"King", "国王", "seasoned mastery of", "老练的驾驭"},
}

type dimensionDef struct {
	name    string
	zhName  string
	category string
	desc    string
	zhDesc  string
}

var dimensions = []dimensionDef{
	{"love", "爱情", "relationship", "Romance, partnership and matters of the heart.", "恋情、伴侣关系与心之所向。"},
	{"career", "事业", "work", "Vocation, ambition and professional direction.", "职业、抱负与发展方向。"},
	{"finance", "财富", "material", "Money, resources and material security.", "金钱、资源与物质保障。"},
	{"health", "健康", "wellbeing", "Energy, body and overall wellbeing.", "精力、身体与整体状态。"},
	{"spirituality", "灵性", "inner", "Inner growth, purpose and meaning.", "内在成长、目标与意义。"},
}

type spreadDef struct {
	name      string
	zhName    string
	desc      string
	zhDesc    string
	cardCount int
}

var spreads = []spreadDef{
	{"Single Card", "单张牌", "One card for a focused daily insight.", "一张牌，聚焦当下的指引。", 1},
	{"Three Card", "三张牌", "Past, present and future in three positions.", "过去、现在与未来三个牌位。", 3},
	{"Celtic Cross", "凯尔特十字", "A ten-position spread for a full situation reading.", "十个牌位，全面解读所处局面。", 10},
}

const (
	deckName   = "Rider-Waite"
	zhDeckName = "韦特塔罗"
	styleName  = "rider-waite-classic"
	baseURL    = "https://assets.tarotvault.app/cards/rider-waite"
)

// Build writes a complete config database to path, replacing any existing
// file. The content is deterministic: running it twice yields the same rows.
func Build(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale output: %w", err)
	}
	_ = os.Remove(path + "-wal")
	_ = os.Remove(path + "-shm")

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path)))
	if err != nil {
		return fmt.Errorf("open output db: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, ddl := range configSchemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create config schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := populate(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func populate(ctx context.Context, tx *sql.Tx) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO card_style (name, image_base_url) VALUES (?, ?)`, styleName, baseURL)
	if err != nil {
		return fmt.Errorf("insert style: %w", err)
	}
	styleID, _ := res.LastInsertId()

	dimIDs, err := insertDimensions(ctx, tx)
	if err != nil {
		return err
	}
	if err := insertSpreads(ctx, tx); err != nil {
		return err
	}

	for i, m := range majors {
		cardID, err := insertCard(ctx, tx, m.name, domain.ArcanaMajor, "", i, styleID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO card_translation (card_id, locale, name, deck, suit) VALUES (?, 'zh-CN', ?, ?, '')`,
			cardID, m.zhName, zhDeckName); err != nil {
			return fmt.Errorf("translate card %q: %w", m.name, err)
		}
		if err := insertInterpretations(ctx, tx, cardID, m.name, m.zhName, m.upright, m.reversed, m.zhUpright, m.zhReversed, dimIDs); err != nil {
			return err
		}
	}

	for _, s := range suits {
		for n, r := range ranks {
			name := fmt.Sprintf("%s of %s", r.name, s.name)
			zhName := s.zhName + r.zhName
			cardID, err := insertCard(ctx, tx, name, domain.ArcanaMinor, s.name, n+1, styleID)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO card_translation (card_id, locale, name, deck, suit) VALUES (?, 'zh-CN', ?, ?, ?)`,
				cardID, zhName, zhDeckName, s.zhName); err != nil {
				return fmt.Errorf("translate card %q: %w", name, err)
			}
			up := fmt.Sprintf("%s %s", r.theme, s.theme)
			rev := fmt.Sprintf("blocked or excessive %s", s.theme)
			zhUp := fmt.Sprintf("%s，%s", r.zhTheme, s.zhTheme)
			zhRev := fmt.Sprintf("%s受阻或过度", s.zhTheme)
			if err := insertInterpretations(ctx, tx, cardID, name, zhName, up, rev, zhUp, zhRev, dimIDs); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertCard(ctx context.Context, tx *sql.Tx, name, arcana, suit string, number int, styleID int64) (int64, error) {
	img := fmt.Sprintf("%s/%s.png", baseURL, slugify(name))
	res, err := tx.ExecContext(ctx,
		`INSERT INTO card (name, arcana, suit, number, image_url, style_id, deck) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, arcana, suit, number, img, styleID, deckName)
	if err != nil {
		return 0, fmt.Errorf("insert card %q: %w", name, err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func insertDimensions(ctx context.Context, tx *sql.Tx) (map[string]int64, error) {
	ids := make(map[string]int64, len(dimensions))
	for _, d := range dimensions {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO dimension (name, category, description, aspect, aspect_type) VALUES (?, ?, ?, '', 'general')`,
			d.name, d.category, d.desc)
		if err != nil {
			return nil, fmt.Errorf("insert dimension %q: %w", d.name, err)
		}
		id, _ := res.LastInsertId()
		ids[d.name] = id
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dimension_translation (dimension_id, locale, name, description, aspect, category) VALUES (?, 'zh-CN', ?, ?, '', ?)`,
			id, d.zhName, d.zhDesc, d.category); err != nil {
			return nil, fmt.Errorf("translate dimension %q: %w", d.name, err)
		}
	}
	return ids, nil
}

func insertSpreads(ctx context.Context, tx *sql.Tx) error {
	for _, s := range spreads {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO spread (name, description, card_count) VALUES (?, ?, ?)`,
			s.name, s.desc, s.cardCount)
		if err != nil {
			return fmt.Errorf("insert spread %q: %w", s.name, err)
		}
		id, _ := res.LastInsertId()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO spread_translation (spread_id, locale, name, description) VALUES (?, 'zh-CN', ?, ?)`,
			id, s.zhName, s.zhDesc); err != nil {
			return fmt.Errorf("translate spread %q: %w", s.name, err)
		}
	}
	return nil
}

func insertInterpretations(ctx context.Context, tx *sql.Tx, cardID int64, name, zhName, upright, reversed, zhUpright, zhReversed string, dimIDs map[string]int64) error {
	type arm struct {
		direction string
		keywords  string
		zhKeywords string
		zhLabel   string
	}
	arms := []arm{
		{domain.DirectionUpright, upright, zhUpright, "正位"},
		{domain.DirectionReversed, reversed, zhReversed, "逆位"},
	}
	for _, a := range arms {
		summary := fmt.Sprintf("%s (%s): %s.", name, a.direction, a.keywords)
		detail := fmt.Sprintf("When %s appears %s, the reading centers on %s. Consider how this energy is already present in the situation before acting on it.",
			name, a.direction, a.keywords)
		res, err := tx.ExecContext(ctx,
			`INSERT INTO card_interpretation (card_id, direction, summary, detail) VALUES (?, ?, ?, ?)`,
			cardID, a.direction, summary, detail)
		if err != nil {
			return fmt.Errorf("insert interpretation %q/%s: %w", name, a.direction, err)
		}
		interpID, _ := res.LastInsertId()

		zhSummary := fmt.Sprintf("%s（%s）：%s。", zhName, a.zhLabel, a.zhKeywords)
		zhDetail := fmt.Sprintf("%s以%s出现时，这次解读的核心是：%s。先觉察这股能量在现状中的位置，再决定行动。", zhName, a.zhLabel, a.zhKeywords)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO card_interpretation_translation (interpretation_id, locale, summary, detail, direction) VALUES (?, 'zh-CN', ?, ?, ?)`,
			interpID, zhSummary, zhDetail, a.direction); err != nil {
			return fmt.Errorf("translate interpretation %q/%s: %w", name, a.direction, err)
		}

		for _, d := range dimensions {
			content := fmt.Sprintf("For %s, %s %s suggests %s shaping this area of life.", d.name, name, a.direction, a.keywords)
			res, err := tx.ExecContext(ctx,
				`INSERT INTO card_interpretation_dimension (interpretation_id, dimension_id, aspect, aspect_type, content) VALUES (?, ?, '', 'general', ?)`,
				interpID, dimIDs[d.name], content)
			if err != nil {
				return fmt.Errorf("insert dimension content %q/%s/%s: %w", name, a.direction, d.name, err)
			}
			dimInterpID, _ := res.LastInsertId()
			zhContent := fmt.Sprintf("在%s方面，%s%s意味着：%s。", d.zhName, zhName, a.zhLabel, a.zhKeywords)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO card_interpretation_dimension_translation (dimension_interpretation_id, locale, aspect, content) VALUES (?, 'zh-CN', '', ?)`,
				dimInterpID, zhContent); err != nil {
				return fmt.Errorf("translate dimension content %q/%s/%s: %w", name, a.direction, d.name, err)
			}
		}
	}
	return nil
}

// slugify lowercases a card name into a stable image file name.
func slugify(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}
