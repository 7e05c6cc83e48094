package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"tour-booking/internal/config"
	"tour-booking/internal/credential"
	domainResource "tour-booking/internal/domain/resource"
	domainReview "tour-booking/internal/domain/review"
	domainUser "tour-booking/internal/domain/user"
	"tour-booking/internal/domain/user/mocks"
	"tour-booking/internal/middleware"
	notifierMocks "tour-booking/internal/notifier/mocks"
	"tour-booking/internal/query"
	"tour-booking/internal/usecase/review"
	"tour-booking/internal/usecase/user"
	appErrors "tour-booking/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Results *int            `json:"results"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer session")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type staticAuth struct {
	user *domainUser.User
}

func (a staticAuth) Authenticate(_ context.Context, token string) (*domainUser.User, error) {
	if token != "session" {
		return nil, appErrors.ErrInvalidToken
	}
	return a.user, nil
}

type reviewStore struct {
	reviews map[uuid.UUID]*domainReview.Review
}

func (s *reviewStore) Find(_ context.Context, scope domainResource.Scope, _ *query.Descriptor) ([]*domainReview.Review, error) {
	out := []*domainReview.Review{}
	for _, rv := range s.reviews {
		if id, ok := scope["tourId"]; ok && id != rv.TourID {
			continue
		}
		c := *rv
		out = append(out, &c)
	}
	return out, nil
}

func (s *reviewStore) FindByID(_ context.Context, id uuid.UUID, _ ...string) (*domainReview.Review, error) {
	rv, ok := s.reviews[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	c := *rv
	return &c, nil
}

func (s *reviewStore) Insert(_ context.Context, rv *domainReview.Review) error {
	rv.ID = uuid.New()
	c := *rv
	s.reviews[rv.ID] = &c
	return nil
}

func (s *reviewStore) UpdateByID(_ context.Context, id uuid.UUID, rv *domainReview.Review) error {
	c := *rv
	s.reviews[id] = &c
	return nil
}

func (s *reviewStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	if _, ok := s.reviews[id]; !ok {
		return appErrors.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *reviewStore) Summarize(_ context.Context, tourID uuid.UUID) (domainReview.RatingSummary, error) {
	var sum domainReview.RatingSummary
	var total float64
	for _, rv := range s.reviews {
		if rv.TourID == tourID {
			sum.Quantity++
			total += rv.Rating
		}
	}
	if sum.Quantity > 0 {
		sum.Average = total / float64(sum.Quantity)
	}
	return sum, nil
}

type ratingsRecorder struct {
	quantity int
	average  float64
}

func (r *ratingsRecorder) UpdateRatings(_ context.Context, _ uuid.UUID, quantity int, average float64) error {
	r.quantity = quantity
	r.average = average
	return nil
}

func newReviewRouter(author *domainUser.User) (*gin.Engine, *reviewStore, *ratingsRecorder) {
	store := &reviewStore{reviews: map[uuid.UUID]*domainReview.Review{}}
	ratings := &ratingsRecorder{}
	h := NewReviewHandler(review.NewService(store, ratings, 100))

	r := gin.New()
	api := r.Group("/api/v1", middleware.AuthMiddleware(staticAuth{user: author}))
	h.RegisterRoutes(api)
	h.RegisterAuthorRoutes(api)
	h.RegisterModerationRoutes(api)
	r.NoRoute(NotFound)
	return r, store, ratings
}

func TestReviewHandler_NestedCreate(t *testing.T) {
	author := &domainUser.User{ID: uuid.New(), Name: "Lourdes", Role: domainUser.RoleUser, Active: true}
	r, store, ratings := newReviewRouter(author)
	tourID := uuid.New()

	w := do(r, http.MethodPost, "/api/v1/tours/"+tourID.String()+"/reviews", `{"review":"Loved it","rating":4}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decode(t, w)
	assert.Equal(t, "success", env.Status)

	require.Len(t, store.reviews, 1)
	for _, rv := range store.reviews {
		assert.Equal(t, tourID, rv.TourID)
		assert.Equal(t, author.ID, rv.UserID)
		assert.Equal(t, "Loved it", rv.Review)
	}
	assert.Equal(t, 1, ratings.quantity)
	assert.Equal(t, 4.0, ratings.average)
}

func TestReviewHandler_CreateRejections(t *testing.T) {
	author := &domainUser.User{ID: uuid.New(), Role: domainUser.RoleUser, Active: true}
	r, store, _ := newReviewRouter(author)
	tourID := uuid.New().String()

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{name: "rating out of range", path: "/api/v1/tours/" + tourID + "/reviews", body: `{"review":"meh","rating":9}`, status: http.StatusBadRequest},
		{name: "missing tour", path: "/api/v1/reviews", body: `{"review":"meh","rating":3}`, status: http.StatusBadRequest},
		{name: "bad tour param", path: "/api/v1/tours/abc/reviews", body: `{"review":"meh","rating":3}`, status: http.StatusBadRequest},
		{name: "malformed body", path: "/api/v1/reviews", body: `{"review":`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "fail", decode(t, w).Status)
		})
	}
	assert.Empty(t, store.reviews)
}

func TestReviewHandler_ListScopedToTour(t *testing.T) {
	r, store, _ := newReviewRouter(&domainUser.User{ID: uuid.New(), Role: domainUser.RoleUser, Active: true})
	tourA, tourB := uuid.New(), uuid.New()
	for _, tourID := range []uuid.UUID{tourA, tourA, tourB} {
		require.NoError(t, store.Insert(context.Background(), &domainReview.Review{
			Review: "ok", Rating: 3, TourID: tourID, UserID: uuid.New(),
		}))
	}

	w := do(r, http.MethodGet, "/api/v1/tours/"+tourA.String()+"/reviews", "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Results)
	assert.Equal(t, 2, *env.Results)

	w = do(r, http.MethodGet, "/api/v1/reviews", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, *decode(t, w).Results)
}

func TestReviewHandler_GetUpdateDelete(t *testing.T) {
	r, store, ratings := newReviewRouter(&domainUser.User{ID: uuid.New(), Role: domainUser.RoleAdmin, Active: true})
	rv := &domainReview.Review{Review: "fine", Rating: 3, TourID: uuid.New(), UserID: uuid.New()}
	require.NoError(t, store.Insert(context.Background(), rv))
	path := "/api/v1/reviews/" + rv.ID.String()

	w := do(r, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Data domainReview.Review `json:"data"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "fine", data.Data.Review)

	w = do(r, http.MethodPatch, path, `{"rating":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, store.reviews[rv.ID].Rating)
	assert.Equal(t, 5.0, ratings.average)

	w = do(r, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.reviews)
	assert.Equal(t, 0, ratings.quantity)
	assert.Equal(t, 4.5, ratings.average)

	w = do(r, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/reviews/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id: not-a-uuid", decode(t, w).Message)
}

func TestNotFound(t *testing.T) {
	r, _, _ := newReviewRouter(&domainUser.User{ID: uuid.New(), Role: domainUser.RoleUser, Active: true})

	w := do(r, http.MethodGet, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "can't find /api/v1/nowhere on this server", decode(t, w).Message)
}

func newUserRouter(t *testing.T) (*gin.Engine, *mocks.MockRepository, *credential.Codec) {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.JWT = config.JWTConfig{
		Secret:            "test-secret-that-is-long-enough",
		ExpiresIn:         time.Hour,
		CookieExpiresDays: 90,
		BcryptCost:        bcrypt.MinCost,
	}

	codec, err := credential.NewCodec(cfg.JWT)
	require.NoError(t, err)

	repo := mocks.NewMockRepository(ctrl)
	service := user.NewService(repo, codec, notifierMocks.NewMockNotifier(ctrl), nil, cfg)
	h := NewUserHandler(service, user.NewAdminService(nil, 100), cfg)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, repo, codec
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestUserHandler_Login(t *testing.T) {
	r, repo, codec := newUserRouter(t)

	hash, err := codec.HashPassword("pass1234")
	require.NoError(t, err)
	u := &domainUser.User{ID: uuid.New(), Email: "ana@example.com", Role: domainUser.RoleUser, PasswordHash: hash, Active: true}

	repo.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(u, nil).Times(2)

	w := do(r, http.MethodPost, "/api/v1/users/login", `{"email":"ana@example.com","password":"pass1234"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decode(t, w)
	assert.NotEmpty(t, env.Token)
	assert.NotContains(t, string(env.Data), hash)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, env.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 90*24*60*60, cookie.MaxAge)

	w = do(r, http.MethodPost, "/api/v1/users/login", `{"email":"ana@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(w))

	w = do(r, http.MethodPost, "/api/v1/users/login", `{"email":"ana@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "please provide email and password", decode(t, w).Message)
}

func TestUserHandler_Logout(t *testing.T) {
	r, _, _ := newUserRouter(t)

	w := do(r, http.MethodGet, "/api/v1/users/logout", "")
	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "loggedout", cookie.Value)
	assert.Equal(t, 10, cookie.MaxAge)
}
