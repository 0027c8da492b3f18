package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handlers and middleware into one http.Handler.
// SessionMiddleware guards the schedule endpoints; the auth endpoints stay
// reachable without a session so users can actually log in.
type RouterConfig struct {
	Auth              *AuthHandler
	Schedules         *ScheduleHandler
	Availabilities    *AvailabilityHandler
	SessionMiddleware func(http.Handler) http.Handler
	Middleware        []func(http.Handler) http.Handler
}

// NewRouter builds the route table.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.Handler {
		if cfg.SessionMiddleware != nil {
			return cfg.SessionMiddleware(h)
		}
		return h
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/auth/", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}

			rest := strings.TrimPrefix(r.URL.Path, "/auth/")
			provider, tail, hasTail := strings.Cut(rest, "/")
			switch {
			case provider == "":
				http.NotFound(w, r)
			case !hasTail:
				cfg.Auth.Login(w, r, provider)
			case tail == "callback":
				cfg.Auth.Callback(w, r, provider)
			default:
				http.NotFound(w, r)
			}
		})
		mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		})
	}

	if cfg.Schedules != nil {
		mux.Handle("/schedules", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Schedules.List(w, r)
			case http.MethodPost:
				cfg.Schedules.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/schedules/new", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedules.New(w, r)
		}))
		mux.Handle("/schedules/", protect(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/schedules/")
			id, tail, hasTail := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}

			r = r.WithContext(ContextWithScheduleID(r.Context(), id))

			switch {
			case !hasTail:
				switch r.Method {
				case http.MethodGet:
					cfg.Schedules.Show(w, r)
				case http.MethodPost:
					cfg.Schedules.Mutate(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case tail == "edit":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Schedules.EditForm(w, r)
			case tail == "availability" && cfg.Availabilities != nil:
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Availabilities.Set(w, r)
			default:
				http.NotFound(w, r)
			}
		}))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
