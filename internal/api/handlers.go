package api

import (
	"net/http"

	"github.com/darte/storefront/internal/catalog"
	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/middleware"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/services"
	"github.com/darte/storefront/internal/session"
	"github.com/darte/storefront/pkg/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services groups the storefront services used by the handlers
type Services struct {
	Products  *services.ProductService
	Cart      *services.CartService
	Favorites *services.FavoriteService
	Users     *services.UserService
	Sellers   *services.SellerService
	Uploads   *services.UploadService
	Admin     *services.AdminService
	Messages  *services.MessageService
}

// NewServices wires every service against the same catalog and metrics
func NewServices(cat *catalog.Catalog, w catalog.Writer, m *metrics.AppMetrics) Services {
	return Services{
		Products:  services.NewProductService(m),
		Cart:      services.NewCartService(m),
		Favorites: services.NewFavoriteService(m),
		Users:     services.NewUserService(m),
		Sellers:   services.NewSellerService(m),
		Uploads:   services.NewUploadService(w, m),
		Admin:     services.NewAdminService(cat),
		Messages:  services.NewMessageService(),
	}
}

// App holds application dependencies
type App struct {
	config   *config.Config
	metrics  *metrics.AppMetrics
	sessions *session.Manager
	svc      Services
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, m *metrics.AppMetrics, sessions *session.Manager, svc Services) *App {
	return &App{
		config:   cfg,
		metrics:  m,
		sessions: sessions,
		svc:      svc,
	}
}

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	// Middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.ErrorHandlerMiddleware)
	r.Use(middleware.MetricsMiddleware(a.metrics))

	// Operational routes carry no session
	r.HandleFunc("/health", a.HealthHandler).Methods("GET")
	if a.config.PrometheusEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	shop := r.NewRoute().Subrouter()
	shop.Use(a.sessions.Middleware)

	// Catalog
	shop.HandleFunc("/", a.withSession(a.HomeHandler)).Methods("GET")
	shop.HandleFunc("/search", a.withSession(a.SearchHandler)).Methods("GET")
	shop.HandleFunc("/product/{id}", a.withSession(a.GetProductHandler)).Methods("GET")

	// Cart
	shop.HandleFunc("/cart", a.withSession(a.GetCartHandler)).Methods("GET")
	shop.HandleFunc("/cart", a.withSession(a.AddToCartHandler)).Methods("POST")
	shop.HandleFunc("/cart/checkout", a.withSession(a.CheckoutHandler)).Methods("POST")
	shop.HandleFunc("/cart/{id}", a.withSession(a.UpdateCartHandler)).Methods("PUT")
	shop.HandleFunc("/cart/{id}", a.withSession(a.RemoveFromCartHandler)).Methods("DELETE")

	// Favorites
	shop.HandleFunc("/favorites", a.withSession(a.ListFavoritesHandler)).Methods("GET")
	shop.HandleFunc("/favorites/{id}", a.withSession(a.ToggleFavoriteHandler)).Methods("POST")

	// Account
	shop.HandleFunc("/login", a.withSession(a.LoginPageHandler)).Methods("GET")
	shop.HandleFunc("/login", a.withSession(a.LoginHandler)).Methods("POST")
	shop.HandleFunc("/login/google", a.withSession(a.GoogleLoginHandler)).Methods("POST")
	shop.HandleFunc("/logout", a.withSession(a.LogoutHandler)).Methods("POST")
	shop.HandleFunc("/profile", a.withSession(a.GetProfileHandler)).Methods("GET")
	shop.HandleFunc("/profile", a.withSession(a.UpdateProfileHandler)).Methods("PUT")
	shop.HandleFunc("/session", a.withSession(a.GetSessionHandler)).Methods("GET")
	shop.HandleFunc("/session", a.withSession(a.UpdateSessionHandler)).Methods("PUT")

	// Messaging
	shop.HandleFunc("/message/{sellerId}", a.withSession(a.GetConversationHandler)).Methods("GET")
	shop.HandleFunc("/message/{sellerId}", a.withSession(a.SendMessageHandler)).Methods("POST")
	shop.HandleFunc("/message/{sellerId}", a.withSession(a.CloseConversationHandler)).Methods("DELETE")

	// Sellers
	shop.HandleFunc("/become-seller", a.withSession(a.SellerOnboardingHandler)).Methods("GET")
	shop.HandleFunc("/become-seller", a.withSession(a.SellerApplyHandler)).Methods("POST")
	shop.HandleFunc("/upload-product", a.withSession(a.UploadFormHandler)).Methods("GET")
	shop.HandleFunc("/upload-product", a.withSession(a.UploadProductHandler)).Methods("POST")

	// Admin
	shop.HandleFunc("/admin", a.withSession(a.AdminDashboardHandler)).Methods("GET")
	shop.HandleFunc("/admin/applications/{id}/approve", a.withSession(a.ApproveSellerHandler)).Methods("POST")
	shop.HandleFunc("/admin/applications/{id}/reject", a.withSession(a.RejectSellerHandler)).Methods("POST")
	shop.HandleFunc("/admin/users/{id}/remove-seller", a.withSession(a.RemoveSellerHandler)).Methods("POST")

	// Category pages last so they never shadow the fixed paths above
	shop.HandleFunc("/{category:men|women|gadgets|clothing|jewelry|gifts}", a.withSession(a.CategoryHandler)).Methods("GET")

	// Router middleware does not run for unmatched paths
	r.NotFoundHandler = middleware.RequestIDMiddleware(middleware.MetricsMiddleware(a.metrics)(http.HandlerFunc(a.NotFoundHandler)))
}

// Handler wraps the router with CORS. Preflight requests match no route,
// so CORS cannot be router middleware.
func (a *App) Handler(r *mux.Router) http.Handler {
	return middleware.CORSMiddleware(a.config.CORSAllowedOrigins)(r)
}

// HealthHandler handles health check requests
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"sessions": a.sessions.Count(),
	})
}

// NotFoundHandler answers every unknown path
func (a *App) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "page not found",
		"path":  r.URL.Path,
	})
}

// HomeHandler handles GET /
func (a *App) HomeHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, a.svc.Products.Home(r.Context(), sess.Store))
}

// CategoryHandler handles GET /{category}
func (a *App) CategoryHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	c, ok := models.ParseCategory(mux.Vars(r)["category"])
	if !ok {
		a.NotFoundHandler(w, r)
		return
	}
	writeJSON(w, http.StatusOK, a.svc.Products.Category(r.Context(), sess.Store, c))
}

// SearchHandler handles GET /search. The q parameter, when present,
// replaces the session's search text.
func (a *App) SearchHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var query *string
	if values, ok := r.URL.Query()["q"]; ok && len(values) > 0 {
		query = &values[0]
	}
	writeJSON(w, http.StatusOK, a.svc.Products.Search(r.Context(), sess.Store, query))
}

// GetProductHandler handles GET /product/{id}
func (a *App) GetProductHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	page, err := a.svc.Products.Get(r.Context(), sess.Store, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetCartHandler handles GET /cart
func (a *App) GetCartHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, a.svc.Cart.Summary(sess.Store))
}

// AddToCartHandler handles POST /cart
func (a *App) AddToCartHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req models.AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProductID == "" {
		writeError(w, r, &services.ValidationError{Field: "productId", Reason: "is required"})
		return
	}

	if err := a.svc.Cart.Add(r.Context(), sess.Store, req.ProductID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.svc.Cart.Summary(sess.Store))
}

// UpdateCartHandler handles PUT /cart/{id}. A quantity of zero or less
// removes the line; a missing quantity is rejected.
func (a *App) UpdateCartHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req models.UpdateQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, r, &services.ValidationError{Field: "quantity", Reason: "is required"})
		return
	}
	a.svc.Cart.Update(r.Context(), sess.Store, mux.Vars(r)["id"], *req.Quantity)
	writeJSON(w, http.StatusOK, a.svc.Cart.Summary(sess.Store))
}

// RemoveFromCartHandler handles DELETE /cart/{id}
func (a *App) RemoveFromCartHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	a.svc.Cart.Remove(r.Context(), sess.Store, mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, a.svc.Cart.Summary(sess.Store))
}

// CheckoutHandler handles POST /cart/checkout
func (a *App) CheckoutHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	notice, err := a.svc.Cart.Checkout(r.Context(), sess.Store)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

// ListFavoritesHandler handles GET /favorites
func (a *App) ListFavoritesHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	favorites := a.svc.Favorites.List(sess.Store)
	writeJSON(w, http.StatusOK, map[string]any{
		"products": favorites,
		"count":    len(favorites),
	})
}

// ToggleFavoriteHandler handles POST /favorites/{id}
func (a *App) ToggleFavoriteHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id := mux.Vars(r)["id"]
	favorite, err := a.svc.Favorites.Toggle(r.Context(), sess.Store, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"productId":      id,
		"isFavorite":     favorite,
		"favoritesCount": sess.Store.FavoritesCount(),
	})
}

// LoginPageHandler handles GET /login
func (a *App) LoginPageHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, map[string]any{
		"loggedIn": sess.Store.CurrentUser() != nil,
		"modes":    []string{"login", "signup"},
	})
}

// LoginHandler handles POST /login
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, notice, err := a.svc.Users.Login(r.Context(), sess.Store, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":   user,
		"notice": notice,
	})
}

// GoogleLoginHandler handles POST /login/google
func (a *App) GoogleLoginHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusNotImplemented, models.Notice{
		Title:       "Google Login",
		Description: "Google OAuth would be implemented here.",
	})
}

// LogoutHandler handles POST /logout
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, a.svc.Users.Logout(r.Context(), sess.Store))
}

// GetProfileHandler handles GET /profile
func (a *App) GetProfileHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	user, err := a.svc.Users.Profile(sess.Store)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": user,
		"role": user.Role(),
	})
}

// UpdateProfileHandler handles PUT /profile
func (a *App) UpdateProfileHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req models.ProfileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	notice, err := a.svc.Users.UpdateProfile(r.Context(), sess.Store, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

// GetSessionHandler handles GET /session
func (a *App) GetSessionHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, sess.Store.Snapshot())
}

// UpdateSessionHandler handles PUT /session. Only the fields present in
// the body change.
func (a *App) UpdateSessionHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req models.SessionUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Category != nil {
		c, ok := models.ParseCategory(*req.Category)
		if !ok {
			writeError(w, r, &services.ValidationError{Field: "category", Reason: "unknown category"})
			return
		}
		sess.Store.SetCurrentCategory(c)
	}
	if req.SearchQuery != nil {
		sess.Store.SetSearchQuery(*req.SearchQuery)
	}
	writeJSON(w, http.StatusOK, sess.Store.Snapshot())
}

// GetConversationHandler handles GET /message/{sellerId}
func (a *App) GetConversationHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	conv, err := a.svc.Messages.View(r.Context(), sess, mux.Vars(r)["sellerId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// SendMessageHandler handles POST /message/{sellerId}
func (a *App) SendMessageHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req models.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	conv, notice, err := a.svc.Messages.Send(r.Context(), sess, mux.Vars(r)["sellerId"], req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"conversation": conv,
		"notice":       notice,
	})
}

// CloseConversationHandler handles DELETE /message/{sellerId}
func (a *App) CloseConversationHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	cancelled := a.svc.Messages.Close(r.Context(), sess, mux.Vars(r)["sellerId"])
	writeJSON(w, http.StatusOK, map[string]int{"cancelledReplies": cancelled})
}

// SellerOnboardingHandler handles GET /become-seller
func (a *App) SellerOnboardingHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, a.svc.Sellers.Onboarding())
}

// SellerApplyHandler handles POST /become-seller
func (a *App) SellerApplyHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var app models.SellerApplication
	if err := decodeJSON(r, &app); err != nil {
		writeError(w, r, err)
		return
	}
	notice, err := a.svc.Sellers.Apply(r.Context(), sess.Store, app)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, notice)
}

// UploadFormHandler handles GET /upload-product
func (a *App) UploadFormHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !services.CanUpload(sess.Store.CurrentUser()) {
		writeError(w, r, services.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fees":       a.svc.Uploads.Fees(),
		"categories": models.ShopCategories,
	})
}

// UploadProductHandler handles POST /upload-product
func (a *App) UploadProductHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var draft models.ProductDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := a.svc.Uploads.Upload(r.Context(), sess.Store, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusAccepted
	if result.RequiresConfirmation {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

// AdminDashboardHandler handles GET /admin
func (a *App) AdminDashboardHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	dashboard, err := a.svc.Admin.Dashboard(r.Context(), sess.Store)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// ApproveSellerHandler handles POST /admin/applications/{id}/approve
func (a *App) ApproveSellerHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	notice, err := a.svc.Admin.ApproveSeller(r.Context(), sess.Store, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

// RejectSellerHandler handles POST /admin/applications/{id}/reject
func (a *App) RejectSellerHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	notice, err := a.svc.Admin.RejectSeller(r.Context(), sess.Store, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

// RemoveSellerHandler handles POST /admin/users/{id}/remove-seller
func (a *App) RemoveSellerHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	notice, err := a.svc.Admin.RemoveSellerRole(r.Context(), sess.Store, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}
