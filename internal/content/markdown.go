package content

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// LargeContentThreshold is the document size, in characters, above which a
// warning is logged.
const LargeContentThreshold = 20000

// iconNames are icon-font ligatures that survive conversion as plain words.
// Names with an underscore are unambiguous and removed anywhere. The others
// are common words and only drop a line made of several icon names.
var iconNames = []string{
	"chevron_right", "chevron_left", "arrow_forward", "arrow_back", "arrow_drop_down",
	"arrow_drop_up", "content_copy", "content_paste", "thumb_up", "thumb_down",
	"thumbs_up", "thumbs_down", "vertical_align_top", "vertical_align_bottom",
	"expand_more", "expand_less", "check_circle", "star_border", "favorite_border",
	"bookmark_border", "visibility_off", "lock_open", "location_on", "calendar_today",
	"more_vert", "more_horiz", "open_in_new", "file_download", "file_upload",
	"cloud_download", "cloud_upload", "play_arrow", "skip_next", "skip_previous",
	"fast_forward", "fast_rewind", "volume_up", "volume_down", "volume_mute",
	"fullscreen_exit", "zoom_in", "zoom_out", "done_all", "help_outline",
	"keyboard_arrow_down", "keyboard_arrow_right", "keyboard_arrow_up", "keyboard_arrow_left",
	"dark_mode", "light_mode",
	"menu", "close", "search", "home", "settings", "check", "error", "warning", "info",
	"list", "share", "edit", "delete", "add", "remove", "star", "favorite", "bookmark",
	"visibility", "lock", "person", "people", "notifications", "email", "phone",
	"schedule", "launch", "link", "pause", "stop", "fullscreen", "refresh", "sync",
	"cached", "done", "clear", "cancel", "help", "code",
}

// minIconRun is the number of plain icon names that make a line icon noise.
const minIconRun = 3

var (
	inlineIcons *regexp.Regexp
	iconNameSet = map[string]bool{}

	emptyLink    = regexp.MustCompile(`\[\s*\]\([^)]*\)`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
	emptyHeading = regexp.MustCompile(`^#{1,6}$`)

	noiseLines = []*regexp.Regexp{
		// skip links
		regexp.MustCompile(`(?i)^\[?skip to (main )?content\]?(\([^)]*\))?$`),
		// cookie notices
		regexp.MustCompile(`(?i)^(this site|this website|we) uses? cookies\b`),
		regexp.MustCompile(`(?i)^(accept|reject) (all )?cookies$`),
		regexp.MustCompile(`(?i)^ok,? got it$`),
		// feedback prompts
		regexp.MustCompile(`(?i)^was this (page'?s? content |page |article |information )?helpful\??`),
		regexp.MustCompile(`(?i)^did you find this (page )?helpful\??`),
		regexp.MustCompile(`(?i)^rate this page:?$`),
		regexp.MustCompile(`(?i)^(send|give) feedback$`),
		// footers
		regexp.MustCompile(`(?i)^unless (stated|otherwise noted).*page last updated`),
		regexp.MustCompile(`(?i)^(page )?last (updated|modified)( on|:)`),
		regexp.MustCompile(`(?i)^\[view source\]\([^)]*\).*\[report an issue\]\([^)]*\)`),
		regexp.MustCompile(`(?i)^\[edit this page\]\([^)]*\)$`),
		// promotions
		regexp.MustCompile(`(?i)^check out our newly published`),
	}
)

func init() {
	var underscored []string
	for _, name := range iconNames {
		iconNameSet[name] = true
		if strings.Contains(name, "_") {
			underscored = append(underscored, regexp.QuoteMeta(name))
		}
	}
	inlineIcons = regexp.MustCompile(`\b(?:` + strings.Join(underscored, "|") + `)\b`)
}

// CleanMarkdown removes conversion leftovers from markdown: icon ligature
// names, skip links, cookie notices, feedback prompts, page footers, empty
// links and empty headings. Blank line runs collapse to a single blank line.
// Fenced code blocks are left untouched.
func CleanMarkdown(markdown string) string {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	inFence := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}

		if isIconLine(trimmed) {
			continue
		}

		if stripped := emptyLink.ReplaceAllString(inlineIcons.ReplaceAllString(line, ""), ""); stripped != line {
			line = strings.TrimRight(stripped, " \t")
			trimmed = strings.TrimSpace(line)
		}

		if trimmed == "" {
			out = append(out, "")
			continue
		}
		if isNoiseLine(trimmed) {
			continue
		}
		out = append(out, line)
	}

	joined := blankRuns.ReplaceAllString(strings.Join(out, "\n"), "\n\n")
	return strings.TrimSpace(joined)
}

func isNoiseLine(line string) bool {
	if emptyHeading.MatchString(line) {
		return true
	}
	for _, re := range noiseLines {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// isIconLine reports whether line holds nothing but icon names, with at
// least one underscored ligature or a run of minIconRun plain names.
func isIconLine(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false
	}
	underscored := false
	for _, t := range tokens {
		if !iconNameSet[t] {
			return false
		}
		if strings.Contains(t, "_") {
			underscored = true
		}
	}
	return underscored || len(tokens) >= minIconRun
}

// WarnIfLarge logs a warning when markdown exceeds LargeContentThreshold and
// reports whether it did.
func WarnIfLarge(url, markdown string) bool {
	n := utf8.RuneCountInString(markdown)
	if n <= LargeContentThreshold {
		return false
	}
	slog.Warn("Large skill document, consider narrowing remove_selectors or rules",
		"url", url, "chars", n, "approx_tokens", n/4)
	return true
}
