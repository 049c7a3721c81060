// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Store domain glyphs for products, sales and roles

package icons

import (
	"os"
	"strings"
	"sync"
)

var nerdFonts = sync.OnceValue(func() bool {
	if env := os.Getenv("STOREFRONT_NERD_FONTS"); env != "" {
		return env == "1" || strings.EqualFold(env, "true")
	}
	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM") + " " + os.Getenv("TERM_PROGRAM"))
	for _, t := range []string{"iterm", "alacritty", "wezterm", "kitty", "ghostty"} {
		if strings.Contains(term, t) {
			return true
		}
	}
	return false
})

// Icon is a Nerd Font glyph with a plain Unicode fallback for other terminals
type Icon struct {
	NerdFont string
	Fallback string
}

func (i Icon) String() string {
	if nerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	Product  = Icon{"󰆧", "□"} // nf-md-cube_outline
	Category = Icon{"󱃾", "⬡"} // nf-md-hexagon_multiple
	Cart     = Icon{"󰋁", "▮"}
	Receipt  = Icon{"󰋊", "■"}
	User     = Icon{"󰇄", "▢"}
	Admin    = Icon{"󰒃", "⛊"} // nf-md-shield_check
	Money    = Icon{"󰓅", "$"}

	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	TrendUp  = Icon{"󰄬", "↗"}
	Chart    = Icon{"󰄭", "▁"}
	Search   = Icon{"󰂓", "⌕"}
	Quit     = Icon{"󰗼", "×"}
	App      = Icon{"󰒋", "◈"}
	Settings = Icon{"󰒓", "⚙"}
)
