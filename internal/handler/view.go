package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/abotl/abotl-web/internal/guard"
	"github.com/abotl/abotl-web/internal/middleware"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

const layoutFile = "layout.html"

// View is the data every page template receives.
type View struct {
	Title   string
	Session session.Session
	Flashes []session.Flash
	Errors  map[string]string
	Form    any
	Data    any
}

// Renderer holds one template set per page, each layered over the layout.
type Renderer struct {
	pages map[string]*template.Template
	now   func() time.Time
}

// NewRenderer parses the layout and every page in files.
func NewRenderer(files fs.FS) (*Renderer, error) {
	r := &Renderer{
		pages: make(map[string]*template.Template),
		now:   time.Now,
	}

	base, err := template.New(layoutFile).Funcs(r.funcs()).ParseFS(files, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	names, err := fs.Glob(files, "*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(files, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(name, ".html")] = t
	}
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"relativeDate": func(t time.Time) string {
			return RelativeDate(t, r.now())
		},
		"dashboardPath": func(s session.Session) string {
			loc, _ := guard.DashboardPath(s)
			return loc
		},
		"hasString": func(list []string, s string) bool {
			return slices.Contains(list, s)
		},
		"initial": initial,
	}
}

// HTML renders page inside the layout.
func (r *Renderer) HTML(c *gin.Context, status int, page string, v View) {
	t, ok := r.pages[page]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page %q", page)
		return
	}
	c.Render(status, render.HTML{Template: t, Name: "layout", Data: v})
}

// newView starts the view for the current request, consuming pending flashes.
func newView(c *gin.Context, store session.Store, title string) View {
	return View{
		Title:   title,
		Session: middleware.GetSession(c),
		Flashes: store.Flashes(c),
	}
}

// redirectWithFlash queues a notification and sends the visitor on.
func redirectWithFlash(c *gin.Context, store session.Store, kind session.FlashKind, msg, location string) {
	store.AddFlash(c, session.Flash{Kind: kind, Message: msg})
	c.Redirect(http.StatusSeeOther, location)
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// RelativeDate labels t relative to now: Today, Yesterday, then days,
// weeks, months and years ago. The zero time has no label.
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	days := int(math.Abs(now.Sub(t).Hours()) / 24)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
