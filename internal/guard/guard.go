// Package guard decides, from the cached session alone, whether a page may
// be rendered or where the visitor should be sent instead.
package guard

import (
	"net/url"
	"strings"

	"github.com/abotl/abotl-web/internal/session"
)

// HomePath is the public landing page.
const HomePath = "/"

// Action is the outcome of a guard decision.
type Action int

const (
	Render Action = iota
	RedirectHome
	RedirectDashboard
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case RedirectHome:
		return "redirect-home"
	case RedirectDashboard:
		return "redirect-dashboard"
	default:
		return "unknown"
	}
}

// Page identifies what to render when the action is Render.
type Page string

const (
	PageNone             Page = ""
	PageHome             Page = "home"
	PageStudentLogin     Page = "student_login"
	PageTeacherLogin     Page = "teacher_login"
	PageStudentRegister  Page = "student_register"
	PageTeacherRegister  Page = "teacher_register"
	PageStudentDashboard Page = "student_page"
	PageTeacherDashboard Page = "teacher_page"
	PageStudentProfile   Page = "student_profile"
	PageTeacherProfile   Page = "teacher_profile"
	PageExplore          Page = "explore"
	PageVideo            Page = "video"
	PageChat             Page = "chat"
)

// Decision is the result of Decide. Location is set for redirects.
type Decision struct {
	Action   Action
	Location string
	Page     Page
}

func render(p Page) Decision {
	return Decision{Action: Render, Page: p}
}

func home() Decision {
	return Decision{Action: RedirectHome, Location: HomePath}
}

var guestPages = map[string]Page{
	"/student/login":    PageStudentLogin,
	"/teacher/login":    PageTeacherLogin,
	"/student/register": PageStudentRegister,
	"/teacher/register": PageTeacherRegister,
}

// authenticated sections; sub-paths are form targets of the same page.
var memberPages = map[string]Page{
	"/explore": PageExplore,
	"/video":   PageVideo,
	"/chat":    PageChat,
}

// DashboardPath builds /{role}/page/{id}. It reports false when the session
// has no role or no id, in which case no dashboard URL can be formed.
func DashboardPath(s session.Session) (string, bool) {
	id := s.UserID()
	if !s.Role.Valid() || id == "" {
		return "", false
	}
	return "/" + string(s.Role) + "/page/" + url.PathEscape(id), true
}

// toDashboard sends an authenticated visitor to their dashboard, or home
// when the dashboard URL cannot be formed.
func toDashboard(s session.Session) Decision {
	if loc, ok := DashboardPath(s); ok {
		return Decision{Action: RedirectDashboard, Location: loc}
	}
	return home()
}

// Decide maps a requested path and a session to exactly one decision. It
// is a pure function of its arguments.
func Decide(path string, s session.Session) Decision {
	path = clean(path)
	authed := s.IsAuthenticated()

	if path == HomePath {
		if !authed {
			return render(PageHome)
		}
		if _, ok := DashboardPath(s); !ok {
			// Redirecting to "/" from "/" would loop.
			return render(PageHome)
		}
		return toDashboard(s)
	}

	if p, ok := guestPages[path]; ok {
		if authed {
			return toDashboard(s)
		}
		return render(p)
	}

	if role, ok := dashboardRole(path); ok {
		if !authed || s.Role != role {
			return home()
		}
		if role == session.RoleTeacher {
			return render(PageTeacherDashboard)
		}
		return render(PageStudentDashboard)
	}

	if path == "/profile" || strings.HasPrefix(path, "/profile/") {
		if !authed {
			return home()
		}
		if s.Role == session.RoleTeacher {
			return render(PageTeacherProfile)
		}
		return render(PageStudentProfile)
	}

	if p, ok := memberPage(path); ok {
		if !authed {
			return home()
		}
		return render(p)
	}

	return home()
}

// dashboardRole matches /{role}/page/{id} and its sub-paths (logout form).
func dashboardRole(path string) (session.Role, bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) < 3 || parts[1] != "page" || parts[2] == "" {
		return "", false
	}
	role := session.ParseRole(parts[0])
	if role == "" {
		return "", false
	}
	return role, true
}

func memberPage(path string) (Page, bool) {
	for prefix, p := range memberPages {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return p, true
		}
	}
	return PageNone, false
}

func clean(path string) string {
	if path == "" {
		return HomePath
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return HomePath
		}
	}
	return path
}
