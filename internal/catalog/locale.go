/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import "strings"

// baseLocale is the locale the config database's base tables are authored in.
// It always terminates the fallback chain.
const baseLocale = "en"

// canonicalRegion maps a bare language code to the region-qualified tag the
// translation tables actually carry for that language.
var canonicalRegion = map[string]string{
	"zh": "zh-CN",
	"pt": "pt-BR",
}

// ResolveLocaleChain computes the candidate locales for translation lookup,
// most specific first: the active locale, the canonical region variant of its
// base language, the base language itself, the application default, then the
// terminal base locale. Duplicates are removed preserving first position, so
// the result is deterministic for any input.
//
// Example: active "zh-TW" with default "en" yields [zh-TW zh-CN zh en].
func ResolveLocaleChain(active, defaultLocale string) []string {
	chain := make([]string, 0, 5)
	seen := make(map[string]bool, 5)
	add := func(loc string) {
		if loc == "" || seen[loc] {
			return
		}
		seen[loc] = true
		chain = append(chain, loc)
	}

	active = NormalizeLocale(active)
	add(active)
	if base, _, found := strings.Cut(active, "-"); found && base != "" {
		add(canonicalRegion[base])
		add(base)
	} else if active != "" {
		add(canonicalRegion[active])
	}
	add(NormalizeLocale(defaultLocale))
	add(baseLocale)
	return chain
}

// NormalizeLocale canonicalizes a BCP-47-ish tag to lowercase language and
// uppercase region ("ZH_cn" -> "zh-CN"). Unparseable input is returned
// trimmed and otherwise untouched.
func NormalizeLocale(loc string) string {
	loc = strings.TrimSpace(strings.ReplaceAll(loc, "_", "-"))
	if loc == "" {
		return ""
	}
	base, region, found := strings.Cut(loc, "-")
	if !found {
		return strings.ToLower(base)
	}
	return strings.ToLower(base) + "-" + strings.ToUpper(region)
}

// chainRank maps each candidate locale to its priority index for overlay
// selection; lower rank wins.
func chainRank(chain []string) map[string]int {
	rank := make(map[string]int, len(chain))
	for i, loc := range chain {
		rank[loc] = i
	}
	return rank
}

// placeholders renders "?,?,..." for an IN clause over the chain.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// chainArgs converts the chain to query arguments.
func chainArgs(chain []string) []any {
	args := make([]any, len(chain))
	for i, loc := range chain {
		args[i] = loc
	}
	return args
}
