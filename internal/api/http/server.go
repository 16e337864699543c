package http

import (
	"net/http"
	"strconv"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/live"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/security"
	"equiprent-backend/internal/service"
	"equiprent-backend/internal/storage"

	"github.com/gorilla/mux"
)

// Server wires services into the REST routes.
type Server struct {
	auth      service.AuthService
	equipment service.EquipmentService
	bookings  service.BookingService
	reviews   service.ReviewService
	notifs    service.NotificationService
	checklist service.ChecklistService
	logistics service.LogisticsService
	admin     service.AdminService
	hub       *live.Hub
	files     *storage.LocalStorage
	tokens    security.TokenManager
	userRepo  repository.UserRepository
}

func NewServer(
	auth service.AuthService,
	equipment service.EquipmentService,
	bookings service.BookingService,
	reviews service.ReviewService,
	notifs service.NotificationService,
	checklist service.ChecklistService,
	logistics service.LogisticsService,
	admin service.AdminService,
	hub *live.Hub,
	files *storage.LocalStorage,
	tokens security.TokenManager,
	userRepo repository.UserRepository,
) *Server {
	return &Server{
		auth:      auth,
		equipment: equipment,
		bookings:  bookings,
		reviews:   reviews,
		notifs:    notifs,
		checklist: checklist,
		logistics: logistics,
		admin:     admin,
		hub:       hub,
		files:     files,
		tokens:    tokens,
		userRepo:  userRepo,
	}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	authn := authenticate(s.tokens, s.userRepo)
	adminOnly := requireRole(domain.UserRoleAdmin)
	ownerOnly := requireRole(domain.UserRoleOwner, domain.UserRoleAdmin)

	api := r.PathPrefix("/api").Subrouter()

	// Public auth routes.
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	auth.HandleFunc("/verify-email", s.handleVerifyEmail).Methods(http.MethodPost)
	auth.HandleFunc("/resend-otp", s.handleResendOTP).Methods(http.MethodPost)
	auth.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", s.handleForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", s.handleResetPassword).Methods(http.MethodPost)
	auth.HandleFunc("/cnic-images-public", s.handleUploadCNICImagesPublic).Methods(http.MethodPost)

	// Authenticated profile routes.
	profile := api.PathPrefix("/auth").Subrouter()
	profile.Use(authn)
	profile.HandleFunc("/me", s.handleGetProfile).Methods(http.MethodGet)
	profile.HandleFunc("/me", s.handleUpdateProfile).Methods(http.MethodPut)
	profile.HandleFunc("/change-password", s.handleChangePassword).Methods(http.MethodPost)
	profile.HandleFunc("/request-password-change-otp", s.handleRequestPasswordChangeOTP).Methods(http.MethodPost)
	profile.HandleFunc("/change-password-otp", s.handleChangePasswordWithOTP).Methods(http.MethodPost)
	profile.HandleFunc("/profile-image", s.handleUploadProfileImage).Methods(http.MethodPost)
	profile.HandleFunc("/cnic-images", s.handleUploadCNICImages).Methods(http.MethodPost)

	// Equipment: public catalog plus owner management.
	eq := api.PathPrefix("/equipment").Subrouter()
	eq.HandleFunc("", s.handleSearchEquipment).Methods(http.MethodGet)
	eq.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	eq.HandleFunc("/{id:[0-9]+}", s.handleGetEquipment).Methods(http.MethodGet)
	eq.HandleFunc("/{id:[0-9]+}/reviews", s.handleListEquipmentReviews).Methods(http.MethodGet)
	eq.HandleFunc("/{id:[0-9]+}/availability", s.handleGetAvailability).Methods(http.MethodGet)
	eq.HandleFunc("/{id:[0-9]+}/quote", s.handleQuoteEquipment).Methods(http.MethodGet)

	eqOwner := api.PathPrefix("/equipment").Subrouter()
	eqOwner.Use(authn, ownerOnly)
	eqOwner.HandleFunc("", s.handleCreateEquipment).Methods(http.MethodPost)
	eqOwner.HandleFunc("/mine", s.handleListMyEquipment).Methods(http.MethodGet)
	eqOwner.HandleFunc("/{id:[0-9]+}", s.handleUpdateEquipment).Methods(http.MethodPut)
	eqOwner.HandleFunc("/{id:[0-9]+}", s.handleDeleteEquipment).Methods(http.MethodDelete)
	eqOwner.HandleFunc("/{id:[0-9]+}/images", s.handleUploadEquipmentImages).Methods(http.MethodPost)
	eqOwner.HandleFunc("/{id:[0-9]+}/images/{imageId:[0-9]+}", s.handleDeleteEquipmentImage).Methods(http.MethodDelete)
	eqOwner.HandleFunc("/{id:[0-9]+}/images/{imageId:[0-9]+}/primary", s.handleSetPrimaryImage).Methods(http.MethodPut)
	eqOwner.HandleFunc("/{id:[0-9]+}/availability", s.handleSetAvailability).Methods(http.MethodPut)
	eqOwner.HandleFunc("/{id:[0-9]+}/maintenance", s.handleLogMaintenance).Methods(http.MethodPost)
	eqOwner.HandleFunc("/{id:[0-9]+}/maintenance", s.handleListMaintenance).Methods(http.MethodGet)

	// Bookings.
	bk := api.PathPrefix("/bookings").Subrouter()
	bk.Use(authn)
	bk.HandleFunc("", s.handleCreateBooking).Methods(http.MethodPost)
	bk.HandleFunc("", s.handleListBookings).Methods(http.MethodGet)
	bk.HandleFunc("/renting", s.handleListRenting).Methods(http.MethodGet)
	bk.HandleFunc("/lending", s.handleListLending).Methods(http.MethodGet)
	bk.HandleFunc("/{id:[0-9]+}", s.handleGetBooking).Methods(http.MethodGet)
	bk.HandleFunc("/{id:[0-9]+}/status", s.handleUpdateBookingStatus).Methods(http.MethodPatch)
	bk.HandleFunc("/{id:[0-9]+}/approve", s.handleApproveBooking).Methods(http.MethodPost)
	bk.HandleFunc("/{id:[0-9]+}/reject", s.handleRejectBooking).Methods(http.MethodPost)
	bk.HandleFunc("/{id:[0-9]+}/cancel", s.handleCancelBooking).Methods(http.MethodPost)
	bk.HandleFunc("/{id:[0-9]+}/start", s.handleStartBooking).Methods(http.MethodPost)
	bk.HandleFunc("/{id:[0-9]+}/complete", s.handleCompleteBooking).Methods(http.MethodPost)
	bk.HandleFunc("/{id:[0-9]+}/checklists", s.handleCreateChecklist).Methods(http.MethodPost)
	bk.HandleFunc("/{id:[0-9]+}/checklists", s.handleListChecklists).Methods(http.MethodGet)
	bk.HandleFunc("/{id:[0-9]+}/transport", s.handleRequestTransport).Methods(http.MethodPost)
	bk.HandleFunc("/{id:[0-9]+}/transport", s.handleListTransport).Methods(http.MethodGet)
	bk.HandleFunc("/{id:[0-9]+}/transport/{requestId:[0-9]+}", s.handleUpdateTransport).Methods(http.MethodPut)

	// Reviews: public listing plus authenticated writes.
	api.HandleFunc("/reviews", s.handleListReviews).Methods(http.MethodGet)
	rv := api.PathPrefix("/reviews").Subrouter()
	rv.Use(authn)
	rv.HandleFunc("", s.handleCreateReview).Methods(http.MethodPost)
	rv.HandleFunc("/mine", s.handleListMyReviews).Methods(http.MethodGet)

	// Notifications.
	nt := api.PathPrefix("/notifications").Subrouter()
	nt.Use(authn)
	nt.HandleFunc("", s.handleListNotifications).Methods(http.MethodGet)
	nt.HandleFunc("/read-all", s.handleMarkAllRead).Methods(http.MethodPost)
	nt.HandleFunc("/{id:[0-9]+}/read", s.handleMarkRead).Methods(http.MethodPost)
	nt.HandleFunc("/{id:[0-9]+}", s.handleDeleteNotification).Methods(http.MethodDelete)

	// Owner operators.
	ops := api.PathPrefix("/operators").Subrouter()
	ops.Use(authn, ownerOnly)
	ops.HandleFunc("", s.handleAddOperator).Methods(http.MethodPost)
	ops.HandleFunc("", s.handleListOperators).Methods(http.MethodGet)
	ops.HandleFunc("/{id:[0-9]+}", s.handleUpdateOperator).Methods(http.MethodPut)

	// Admin.
	ad := api.PathPrefix("/admin").Subrouter()
	ad.Use(authn, adminOnly)
	ad.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	ad.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	ad.HandleFunc("/registrations", s.handleListPendingRegistrations).Methods(http.MethodGet)
	ad.HandleFunc("/registrations/{id:[0-9]+}", s.handleDecideRegistration).Methods(http.MethodPost)
	ad.HandleFunc("/users/{id:[0-9]+}/verify", s.handleVerifyUser).Methods(http.MethodPost)
	ad.HandleFunc("/bookings", s.handleAdminListBookings).Methods(http.MethodGet)
	ad.HandleFunc("/equipment/pending", s.handleListPendingEquipment).Methods(http.MethodGet)
	ad.HandleFunc("/equipment/{id:[0-9]+}/decide", s.handleDecideEquipment).Methods(http.MethodPost)
	ad.HandleFunc("/reviews/{id:[0-9]+}/hide", s.handleHideReview).Methods(http.MethodPost)
	ad.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	ad.HandleFunc("/categories/{id:[0-9]+}", s.handleUpdateCategory).Methods(http.MethodPut)
	ad.HandleFunc("/logs", s.handleListAdminLogs).Methods(http.MethodGet)

	// Live updates.
	ws := api.PathPrefix("/ws").Subrouter()
	ws.Use(authn)
	ws.HandleFunc("", s.handleWebsocket).Methods(http.MethodGet)

	// Uploaded files.
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.files.Root()))))

	return cors(requestLogging(r))
}

// pathID parses a numeric mux path variable.
func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return int32(id), nil
}

// pageParams reads page/limit query parameters with sane bounds.
func pageParams(r *http.Request) (page, limit int32) {
	page, limit = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = int32(v)
	}
	return page, limit
}
