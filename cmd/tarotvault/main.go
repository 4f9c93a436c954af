/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"tarotvault/internal/catalog"
	"tarotvault/internal/config"
	"tarotvault/internal/crash"
	"tarotvault/internal/history"
	applog "tarotvault/internal/log"
	"tarotvault/internal/seed"
	"tarotvault/internal/storage"
	"tarotvault/internal/telemetry"
	"tarotvault/internal/version"
)

func usage() {
	fmt.Println("TarotVault — local tarot reading storage")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tarotvault version|-v|--version          Show version")
	fmt.Println("  tarotvault init                          Initialize both databases")
	fmt.Println("  tarotvault status                        Print storage status")
	fmt.Println("  tarotvault seed <out.db>                 Build a config database asset")
	fmt.Println("  tarotvault card show <id> [--locale L]   Show one card with interpretations")
	fmt.Println("  tarotvault history list [flags]          List stored readings")
	fmt.Println("  tarotvault history delete <id>           Delete one reading")
	fmt.Println("  tarotvault locale get|set <user> [tag]   Read or store a user's locale")
	fmt.Println("  tarotvault reset-user                    Clear all reading history")
	fmt.Println("  tarotvault recreate-tables               Drop and recreate the user tables")
	fmt.Println("  tarotvault full-reset                    Delete both database files")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	telemetry.InitDefault()

	var m *storage.Manager
	defer func() { crash.Recover(m) }()

	args := os.Args
	if len(args) < 2 {
		usage()
		return
	}

	ctx := context.Background()
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return

	case "seed":
		if len(args) < 3 {
			fmt.Println("seed requires <out.db>")
			os.Exit(2)
		}
		if err := seed.Build(args[2]); err != nil {
			l.Error("seed build failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Config database written to", args[2])
		return

	case "init":
		m = mustInit(ctx, l)
		st := m.Status()
		fmt.Println("Storage initialized.")
		printStatus(st)
		telemetry.Event("init", map[string]any{"cards": st.CardCount})
		return

	case "status":
		m = mustInit(ctx, l)
		printStatus(m.Status())
		return

	case "card":
		if len(args) < 4 || args[2] != "show" {
			fmt.Println("usage: tarotvault card show <id> [--locale L]")
			os.Exit(2)
		}
		fs := pflag.NewFlagSet("card show", pflag.ExitOnError)
		locale := fs.String("locale", "", "locale for the card texts")
		if err := fs.Parse(args[4:]); err != nil {
			os.Exit(2)
		}
		id, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			fmt.Println("card show: bad id:", args[3])
			os.Exit(2)
		}
		m = mustInit(ctx, l)
		showCard(ctx, m, id, *locale)
		return

	case "history":
		if len(args) < 3 {
			fmt.Println("usage: tarotvault history list|delete ...")
			os.Exit(2)
		}
		m = mustInit(ctx, l)
		svc := history.NewService(m)
		switch args[2] {
		case "list":
			fs := pflag.NewFlagSet("history list", pflag.ExitOnError)
			user := fs.String("user", "", "filter by user id")
			mode := fs.String("mode", "", "filter by interpretation mode (default|ai)")
			spread := fs.Int64("spread", 0, "filter by spread id")
			limit := fs.Int("limit", 20, "maximum rows")
			offset := fs.Int("offset", 0, "rows to skip")
			if err := fs.Parse(args[3:]); err != nil {
				os.Exit(2)
			}
			listHistory(ctx, svc, history.ListFilter{
				UserID: *user, Mode: *mode, SpreadID: *spread, Limit: *limit, Offset: *offset,
			})
		case "delete":
			if len(args) < 4 {
				fmt.Println("history delete requires <id>")
				os.Exit(2)
			}
			if err := svc.DeleteReading(ctx, args[3]); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Deleted reading", args[3])
		default:
			fmt.Println("unknown history command:", args[2])
			os.Exit(2)
		}
		return

	case "locale":
		if len(args) < 4 {
			fmt.Println("usage: tarotvault locale get <user> | locale set <user> <tag>")
			os.Exit(2)
		}
		m = mustInit(ctx, l)
		svc := history.NewService(m)
		switch args[2] {
		case "get":
			loc, err := svc.Locale(ctx, args[3])
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println(loc)
		case "set":
			if len(args) < 5 {
				fmt.Println("locale set requires <user> <tag>")
				os.Exit(2)
			}
			if err := svc.SetLocale(ctx, args[3], catalog.NormalizeLocale(args[4])); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Locale stored.")
		default:
			fmt.Println("unknown locale command:", args[2])
			os.Exit(2)
		}
		return

	case "reset-user":
		m = mustInit(ctx, l)
		if err := m.ResetUserData(ctx); err != nil {
			l.Error("reset failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Reading history cleared.")
		return

	case "recreate-tables":
		m = mustInit(ctx, l)
		if err := m.RecreateUserTables(ctx); err != nil {
			l.Error("recreate failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("User tables recreated. All user data is gone.")
		return

	case "full-reset":
		m = mustInit(ctx, l)
		if err := m.FullReset(ctx); err != nil {
			l.Error("full reset failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Both database files deleted.")
		return
	}

	usage()
}

// mustInit loads the config, opens both databases and exits on failure.
func mustInit(ctx context.Context, l *slog.Logger) *storage.Manager {
	cfg, err := config.Load()
	if err != nil {
		l.Error("config load failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	m := storage.NewManager(cfg.Database, cfg.Locale.Default)
	if _, err := m.Initialize(ctx); err != nil {
		l.Error("storage initialization failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return m
}

func printStatus(st storage.Status) {
	fmt.Println("Initialized:   ", st.Initialized)
	fmt.Println("Config DB:     ", st.ConfigPath)
	fmt.Println("User DB:       ", st.UserPath)
	fmt.Println("Schema version:", st.SchemaVersion)
	fmt.Println("Cards:         ", st.CardCount)
}

func showCard(ctx context.Context, m *storage.Manager, id int64, locale string) {
	svc := catalog.NewService(m)
	c, err := svc.CardByID(ctx, locale, id)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("%s (%s", c.Name, c.Arcana)
	if c.Suit != "" {
		fmt.Printf(", %s", c.Suit)
	}
	fmt.Println(")")
	fmt.Println("Image:", c.ImageURL)

	for _, direction := range []string{"upright", "reversed"} {
		in, err := svc.InterpretationForCard(ctx, locale, id, direction)
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("\n[%s] %s\n", direction, in.Summary)
		for _, d := range in.Dimensions {
			fmt.Printf("  %s: %s\n", d.Name, d.Content)
		}
	}
}

func listHistory(ctx context.Context, svc *history.Service, f history.ListFilter) {
	readings, err := svc.ListReadings(ctx, f)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	total, err := svc.CountReadings(ctx, f)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if len(readings) == 0 {
		fmt.Println("No readings.")
		return
	}
	for _, r := range readings {
		ids := make([]string, len(r.CardIDs))
		for i, cid := range r.CardIDs {
			ids[i] = fmt.Sprint(cid)
		}
		fmt.Printf("%s  %s  user=%s spread=%d mode=%s locale=%s cards=[%s]\n",
			r.Timestamp.Format("2006-01-02 15:04"), r.ID, r.UserID, r.SpreadID, r.Mode, r.Locale, strings.Join(ids, ","))
	}
	fmt.Printf("%d of %d readings\n", len(readings), total)
}
