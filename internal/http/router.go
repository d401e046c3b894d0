package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"

	"nahio/backend/internal/cep"
	"nahio/backend/internal/config"
	"nahio/backend/internal/domain/athlete"
	authdom "nahio/backend/internal/domain/auth"
	"nahio/backend/internal/domain/booking"
	"nahio/backend/internal/domain/invitation"
	"nahio/backend/internal/domain/notifications"
	"nahio/backend/internal/httpjson"
	"nahio/backend/internal/middleware"
	"nahio/backend/internal/schema"
	"nahio/backend/internal/utils"
)

type RouterDeps struct {
	Cfg              config.Config
	AuthClient       *fbauth.Client
	AuthSvc          *authdom.Service
	AthleteSvc       *athlete.Service
	InvitationSvc    *invitation.Service
	BookingSvc       *booking.Service
	NotificationsSvc *notifications.Service
	CEP              *cep.Client
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		OK(w, 200, map[string]any{"ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// ===== Auth (public) =====
	r.Post("/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var in authdom.RegisterInput
		if err := httpjson.Read(r, &in); err != nil {
			Fail(w, 400, "invalid json")
			return
		}

		out, err := d.AuthSvc.Register(r.Context(), in)
		if err != nil {
			status, msg := mapAuthError(err)
			Fail(w, status, msg)
			return
		}
		OK(w, 201, map[string]any{"user": out})
	})

	r.Post("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := httpjson.Read(r, &in); err != nil {
			Fail(w, 400, "invalid json")
			return
		}

		session, err := d.AuthSvc.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			status, msg := mapAuthError(err)
			Fail(w, status, msg)
			return
		}
		OK(w, 200, map[string]any{"session": session})
	})

	r.Post("/v1/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email string `json:"email"`
		}
		if err := httpjson.Read(r, &in); err != nil {
			Fail(w, 400, "invalid json")
			return
		}

		if err := d.AuthSvc.ResetPassword(r.Context(), in.Email); err != nil {
			status, msg := mapAuthError(err)
			Fail(w, status, msg)
			return
		}
		OK(w, 200, nil)
	})

	// ===== CEP (public) =====
	r.Get("/v1/cep/{code}", func(w http.ResponseWriter, r *http.Request) {
		addr, err := d.CEP.Lookup(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			status, msg := mapCEPError(err)
			Fail(w, status, msg)
			return
		}
		OK(w, 200, map[string]any{"address": addr})
	})

	r.Get("/v1/cep/{uf}/{city}/{street}", func(w http.ResponseWriter, r *http.Request) {
		addrs, err := d.CEP.LookupByAddress(r.Context(),
			chi.URLParam(r, "uf"), chi.URLParam(r, "city"), chi.URLParam(r, "street"))
		if err != nil {
			status, msg := mapCEPError(err)
			Fail(w, status, msg)
			return
		}
		OK(w, 200, map[string]any{"addresses": addrs})
	})

	// ===== Protected routes =====
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.AuthClient))

		pr.Post("/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			_ = d.AuthSvc.Logout(r.Context())
			OK(w, 200, nil)
		})

		pr.Post("/v1/auth/guardians", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in authdom.GuardianInput
			if err := httpjson.Read(r, &in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			acc, err := d.AuthSvc.CreateGuardianAccount(r.Context(), au.UID, in)
			if err != nil {
				status, msg := mapAuthError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 201, map[string]any{"account": acc})
		})

		pr.Get("/v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.AuthSvc.GetUserData(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapAuthError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"user": out})
		})

		pr.Patch("/v1/users/{id}/profile", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			id := chi.URLParam(r, "id")
			if id != au.UID {
				Fail(w, 403, "you can only update your own profile")
				return
			}

			var patch map[string]interface{}
			if err := httpjson.Read(r, &patch); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			if err := d.AuthSvc.UpdateProfile(r.Context(), id, patch); err != nil {
				status, msg := mapAuthError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		// ===== Athletes =====
		pr.Post("/v1/athletes", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			institutionID, guardianID, ok := athleteOwnership(w, r, d, au.UID)
			if !ok {
				return
			}

			var in athlete.CreateInput
			if err := httpjson.Read(r, &in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.AthleteSvc.Create(r.Context(), in, institutionID, guardianID)
			if err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 201, map[string]any{"athlete": out})
		})

		pr.Get("/v1/athletes", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()

			if institutionID := q.Get("institutionId"); institutionID != "" {
				out, err := d.AthleteSvc.ListByInstitution(r.Context(), institutionID)
				if err != nil {
					status, msg := mapAthleteError(err)
					Fail(w, status, msg)
					return
				}
				OK(w, 200, map[string]any{"athletes": out})
				return
			}

			f := athlete.Filters{Position: q.Get("position")}
			if v := q.Get("ageMin"); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					f.AgeMin = &n
				}
			}
			if v := q.Get("ageMax"); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					f.AgeMax = &n
				}
			}

			out, err := d.AthleteSvc.ListAll(r.Context(), f)
			if err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"athletes": out})
		})

		pr.Get("/v1/athletes/{id}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.AthleteSvc.GetByID(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"athlete": out})
		})

		pr.Patch("/v1/athletes/{id}", func(w http.ResponseWriter, r *http.Request) {
			var patch map[string]interface{}
			if err := httpjson.Read(r, &patch); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			if err := d.AthleteSvc.Update(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Delete("/v1/athletes/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := d.AthleteSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Put("/v1/athletes/{id}/stats", func(w http.ResponseWriter, r *http.Request) {
			var stats athlete.Stats
			if err := httpjson.Read(r, &stats); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			if err := d.AthleteSvc.UpdateStats(r.Context(), chi.URLParam(r, "id"), stats); err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		// Media: multipart uploads, index-addressed favorites and deletes.
		pr.Post("/v1/athletes/{id}/photos", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			file, ok := mediaFile(w, r)
			if !ok {
				return
			}
			defer file.Close()

			item, err := d.AthleteSvc.UploadPhoto(r.Context(), chi.URLParam(r, "id"), file, au.UID)
			if err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 201, map[string]any{"media": item})
		})

		pr.Post("/v1/athletes/{id}/videos", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			file, ok := mediaFile(w, r)
			if !ok {
				return
			}
			defer file.Close()

			item, err := d.AthleteSvc.UploadVideo(r.Context(), chi.URLParam(r, "id"), file, au.UID)
			if err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 201, map[string]any{"media": item})
		})

		pr.Post("/v1/athletes/{id}/photos/{index}/favorite", func(w http.ResponseWriter, r *http.Request) {
			idx, ok := mediaIndex(w, r)
			if !ok {
				return
			}
			if err := d.AthleteSvc.ToggleFavoritePhoto(r.Context(), chi.URLParam(r, "id"), idx); err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Post("/v1/athletes/{id}/videos/{index}/favorite", func(w http.ResponseWriter, r *http.Request) {
			idx, ok := mediaIndex(w, r)
			if !ok {
				return
			}
			if err := d.AthleteSvc.ToggleFavoriteVideo(r.Context(), chi.URLParam(r, "id"), idx); err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Delete("/v1/athletes/{id}/photos/{index}", func(w http.ResponseWriter, r *http.Request) {
			idx, ok := mediaIndex(w, r)
			if !ok {
				return
			}
			if err := d.AthleteSvc.DeletePhoto(r.Context(), chi.URLParam(r, "id"), idx); err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Delete("/v1/athletes/{id}/videos/{index}", func(w http.ResponseWriter, r *http.Request) {
			idx, ok := mediaIndex(w, r)
			if !ok {
				return
			}
			if err := d.AthleteSvc.DeleteVideo(r.Context(), chi.URLParam(r, "id"), idx); err != nil {
				status, msg := mapAthleteError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		// ===== Invitations =====
		pr.Post("/v1/invitations", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in invitation.SendInput
			if err := httpjson.Read(r, &in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			in.SenderID = au.UID

			out, err := d.InvitationSvc.Send(r.Context(), in)
			if err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 201, map[string]any{"invitation": out})
		})

		pr.Get("/v1/invitations", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var out []invitation.Invitation
			var err error
			if r.URL.Query().Get("direction") == "sent" {
				out, err = d.InvitationSvc.ListBySender(r.Context(), au.UID)
			} else {
				out, err = d.InvitationSvc.ListByRecipient(r.Context(), au.UID)
			}
			if err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"invitations": out})
		})

		pr.Get("/v1/invitations/unread", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			out, err := d.InvitationSvc.ListUnread(r.Context(), au.UID)
			if err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"invitations": out, "count": len(out)})
		})

		pr.Get("/v1/invitations/stats", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			out, err := d.InvitationSvc.Stats(r.Context(), au.UID)
			if err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"stats": out})
		})

		pr.Get("/v1/invitations/check", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			q := r.URL.Query()

			exists, id, err := d.InvitationSvc.CheckExisting(r.Context(),
				au.UID, q.Get("recipientId"), q.Get("athleteId"))
			if err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"exists": exists, "invitationId": id})
		})

		pr.Get("/v1/invitations/institutions", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.InvitationSvc.ListEligibleInstitutions(r.Context())
			if err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"institutions": out})
		})

		pr.Get("/v1/invitations/scouts", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.InvitationSvc.ListEligibleScouts(r.Context())
			if err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"scouts": out})
		})

		pr.Get("/v1/invitations/{id}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.InvitationSvc.GetByID(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"invitation": out})
		})

		pr.Post("/v1/invitations/{id}/accept", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := d.InvitationSvc.Accept(r.Context(), chi.URLParam(r, "id"), au.UID); err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Post("/v1/invitations/{id}/decline", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := d.InvitationSvc.Decline(r.Context(), chi.URLParam(r, "id"), au.UID); err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Delete("/v1/invitations/{id}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := d.InvitationSvc.Delete(r.Context(), chi.URLParam(r, "id"), au.UID); err != nil {
				status, msg := mapInvitationError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		// ===== Bookings =====
		pr.Post("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in booking.CreateInput
			if err := httpjson.Read(r, &in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			in.ScoutID = au.UID

			out, err := d.BookingSvc.Create(r.Context(), in)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 201, map[string]any{"booking": out})
		})

		pr.Get("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var out []booking.Booking
			var err error
			if bookingRole(r) == schema.RoleInstitution {
				out, err = d.BookingSvc.ListByInstitution(r.Context(), au.UID)
			} else {
				out, err = d.BookingSvc.ListByScout(r.Context(), au.UID)
			}
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"bookings": out})
		})

		pr.Get("/v1/bookings/availability", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()

			date, err := utils.ParseTime(q.Get("date"))
			if err != nil {
				Fail(w, 400, "invalid date")
				return
			}

			available, err := d.BookingSvc.CheckAvailability(r.Context(),
				q.Get("institutionId"), date, q.Get("timeSlot"), q.Get("excludeId"))
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"available": available})
		})

		pr.Get("/v1/bookings/upcoming", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			out, err := d.BookingSvc.ListUpcoming(r.Context(), au.UID, bookingRole(r))
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"bookings": out})
		})

		pr.Get("/v1/bookings/stats", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			out, err := d.BookingSvc.Stats(r.Context(), au.UID, bookingRole(r))
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"stats": out})
		})

		pr.Get("/v1/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.BookingSvc.GetByID(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"booking": out})
		})

		pr.Post("/v1/bookings/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := d.BookingSvc.Confirm(r.Context(), chi.URLParam(r, "id"), au.UID); err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Post("/v1/bookings/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := d.BookingSvc.Complete(r.Context(), chi.URLParam(r, "id"), au.UID); err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Post("/v1/bookings/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in struct {
				Reason string `json:"reason,omitempty"`
			}
			_ = httpjson.Read(r, &in)

			if err := d.BookingSvc.Cancel(r.Context(), chi.URLParam(r, "id"), au.UID, strings.TrimSpace(in.Reason)); err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		pr.Delete("/v1/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := d.BookingSvc.Delete(r.Context(), chi.URLParam(r, "id"), au.UID); err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})

		// ===== Notifications =====
		pr.Get("/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			q := r.URL.Query()

			limit := 0
			if v := q.Get("limit"); v != "" {
				limit, _ = strconv.Atoi(v)
			}

			out, err := d.NotificationsSvc.List(r.Context(), au.UID, q.Get("unreadOnly") == "true", limit)
			if err != nil {
				status, msg := mapNotificationsError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{
				"notifications": out.Notifications,
				"unreadCount":   out.UnreadCount,
			})
		})

		pr.Post("/v1/notifications/read", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in notifications.MarkReadInput
			if err := httpjson.Read(r, &in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			n, err := d.NotificationsSvc.MarkRead(r.Context(), au.UID, in)
			if err != nil {
				status, msg := mapNotificationsError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, map[string]any{"updated": n})
		})

		pr.Delete("/v1/notifications/{id}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := d.NotificationsSvc.Delete(r.Context(), au.UID, chi.URLParam(r, "id")); err != nil {
				status, msg := mapNotificationsError(err)
				Fail(w, status, msg)
				return
			}
			OK(w, 200, nil)
		})
	})

	return r
}

// athleteOwnership resolves who the new athlete belongs to. Institutions
// own directly; guardians attach to their linked institution.
func athleteOwnership(w http.ResponseWriter, r *http.Request, d RouterDeps, uid string) (institutionID, guardianID string, ok bool) {
	user, err := d.AuthSvc.GetUserData(r.Context(), uid)
	if err != nil {
		status, msg := mapAuthError(err)
		Fail(w, status, msg)
		return "", "", false
	}

	switch user.Account.Role {
	case schema.RoleInstitution:
		return uid, "", true
	case schema.RoleGuardian:
		linked, _ := user.Profile["institutionId"].(string)
		if linked == "" {
			Fail(w, 400, "guardian is not linked to an institution")
			return "", "", false
		}
		return linked, uid, true
	default:
		Fail(w, 403, "only institutions and guardians can register athletes")
		return "", "", false
	}
}

func mediaFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		Fail(w, 400, "invalid multipart form")
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		Fail(w, 400, "missing file field")
		return nil, false
	}
	return file, true
}

func mediaIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 {
		Fail(w, 400, "invalid media index")
		return 0, false
	}
	return idx, true
}

func bookingRole(r *http.Request) schema.Role {
	if r.URL.Query().Get("role") == string(schema.RoleInstitution) {
		return schema.RoleInstitution
	}
	return schema.RoleScout
}

func mapAuthError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case authdom.IsErrBadRequest(err):
		return 400, err.Error()
	case authdom.IsErrNotFound(err):
		return 404, authdom.UserMessage(err)
	}

	status := 500
	switch {
	case errors.Is(err, authdom.ErrEmailInUse):
		status = 409
	case errors.Is(err, authdom.ErrInvalidEmail), errors.Is(err, authdom.ErrWeakPassword):
		status = 400
	case errors.Is(err, authdom.ErrWrongPassword), errors.Is(err, authdom.ErrInvalidCredential):
		status = 401
	case errors.Is(err, authdom.ErrUserNotFound):
		status = 404
	case errors.Is(err, authdom.ErrUserDisabled), errors.Is(err, authdom.ErrOperationNotAllowed):
		status = 403
	case errors.Is(err, authdom.ErrTooManyRequests):
		status = 429
	case errors.Is(err, authdom.ErrNetwork):
		status = 502
	}
	return status, authdom.UserMessage(err)
}

func mapAthleteError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case athlete.IsErrNotFound(err):
		return 404, err.Error()
	case athlete.IsErrIndexOutOfRange(err):
		return 400, err.Error()
	case athlete.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapInvitationError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case invitation.IsErrUnauthorized(err):
		return 403, err.Error()
	case invitation.IsErrNotFound(err):
		return 404, err.Error()
	case invitation.IsErrDuplicate(err):
		return 409, err.Error()
	case invitation.IsErrInvalidTransition(err):
		return 409, err.Error()
	case invitation.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapBookingError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case booking.IsErrUnauthorized(err):
		return 403, err.Error()
	case booking.IsErrNotFound(err):
		return 404, err.Error()
	case booking.IsErrSlotTaken(err):
		return 409, err.Error()
	case booking.IsErrInvalidTransition(err):
		return 409, err.Error()
	case booking.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapNotificationsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case notifications.IsErrNotFound(err):
		return 404, err.Error()
	case notifications.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapCEPError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case cep.IsErrInvalidCEP(err):
		return 400, err.Error()
	case cep.IsErrNotFound(err):
		return 404, err.Error()
	case cep.IsErrNetwork(err):
		return 502, err.Error()
	default:
		return 500, err.Error()
	}
}
