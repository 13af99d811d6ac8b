package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snackshop-dev/snackadmin/internal/cli/events"
	"github.com/snackshop-dev/snackadmin/internal/cli/notify"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *notify.Recorder, *events.Bus) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rec := &notify.Recorder{}
	bus := events.New()
	c := New(srv.URL+"/api",
		WithTokenSource(TokenFunc(func() string { return token })),
		WithNotifier(rec),
		WithEvents(bus),
	)
	return c, rec, bus
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		assert.Equal(t, "/api/snacks", r.URL.Path)
		writeJSON(w, http.StatusOK, []Product{{ID: "p1", SnackName: "Chips", Price: 15000}})
	}, "abc")

	products, err := c.Products().List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Chips", products[0].SnackName)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Len(t, gotRequestID, 26)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []Category{})
	}, "")

	_, err := c.Categories().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		kind    Kind
		message string
	}{
		{"forbidden", http.StatusForbidden, map[string]string{"message": "admins only"}, KindForbidden, MsgForbidden},
		{"not found", http.StatusNotFound, nil, KindNotFound, MsgNotFound},
		{"server", http.StatusInternalServerError, map[string]string{"message": "boom"}, KindServer, MsgServerError},
		{"validation", http.StatusBadRequest, map[string]string{"message": "Price must be positive"}, KindValidation, "Price must be positive"},
		{"validation error field", http.StatusConflict, map[string]string{"error": "Code already exists"}, KindValidation, "Code already exists"},
		{"other without message", http.StatusTeapot, nil, KindUnknown, MsgSomethingWrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			}, "abc")

			_, err := c.Products().Get(context.Background(), "p1")
			require.Error(t, err)

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.True(t, apiErr.Notified())

			all := rec.All()
			require.Len(t, all, 1)
			assert.Equal(t, notify.LevelError, all[0].Level)
			assert.Equal(t, tt.message, all[0].Message)
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &notify.Recorder{}
	c := New(url+"/api", WithNotifier(rec))

	_, err := c.Orders().List(context.Background(), OrderQuery{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
	assert.Equal(t, 1, rec.Count(MsgCannotConnect))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	rec := &notify.Recorder{}
	c := New(srv.URL, WithNotifier(rec), WithTimeout(50*time.Millisecond))

	_, err := c.Coupons().List(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
	assert.Equal(t, 1, rec.Count(MsgRequestTimedOut))
}

func TestClient_TimeoutSurvivesHTTPClientOption(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	rec := &notify.Recorder{}
	c := New(srv.URL, WithNotifier(rec), WithTimeout(50*time.Millisecond), WithHTTPClient(&http.Client{}))

	done := make(chan error, 1)
	go func() {
		_, err := c.Coupons().List(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, IsKind(err, KindNetwork))
		assert.Equal(t, 1, rec.Count(MsgRequestTimedOut))
	case <-time.After(5 * time.Second):
		t.Fatal("request ignored the configured timeout")
	}
}

func TestClient_CanceledContextIsSilent(t *testing.T) {
	c, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Coupon{})
	}, "abc")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Coupons().List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.All())
}

func TestClient_CanceledWithCauseIsSilent(t *testing.T) {
	started := make(chan struct{})
	c, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}, "abc")

	// errgroup cancels siblings with the first failure as the cause
	ctx, cancel := context.WithCancelCause(context.Background())
	go func() {
		<-started
		cancel(&APIError{Kind: KindAuth, Status: http.StatusUnauthorized, Message: "expired"})
	}()

	_, err := c.Coupons().List(ctx)
	require.Error(t, err)
	assert.False(t, IsKind(err, KindNetwork), "got %v", err)
	assert.Empty(t, rec.All())
}

func TestClient_InvalidJSON(t *testing.T) {
	c, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>"))
	}, "abc")

	_, err := c.Users().List(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnknown))
	assert.Equal(t, 1, rec.Count(MsgInvalidResponse))
}

func TestClient_UnauthorizedEventCarriesRejectedToken(t *testing.T) {
	c, _, bus := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
	}, "stale")

	var got []events.SessionInvalidatedEvent
	require.NoError(t, bus.OnSessionInvalidated(func(ev events.SessionInvalidatedEvent) {
		got = append(got, ev)
	}))

	_, err := c.Coupons().List(context.Background())
	require.Error(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "stale", got[0].Token)
	assert.Equal(t, "/coupons", got[0].Path)
}

func TestClient_UnauthorizedPublishesOnceForConcurrentRequests(t *testing.T) {
	c, rec, bus := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
	}, "stale")

	var published atomic.Int32
	require.NoError(t, bus.OnSessionInvalidated(func(events.SessionInvalidatedEvent) {
		published.Add(1)
	}))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				_, errs[i] = c.Products().List(context.Background())
			case 1:
				_, errs[i] = c.Orders().List(context.Background(), OrderQuery{Page: 1, Limit: 10})
			case 2:
				_, errs[i] = c.Coupons().List(context.Background())
			default:
				_, errs[i] = c.Users().List(context.Background())
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.True(t, IsKind(err, KindAuth))
		apiErr, _ := AsAPIError(err)
		assert.True(t, apiErr.Notified())
	}
	assert.Equal(t, int32(1), published.Load())
	assert.Equal(t, 1, rec.Count(MsgSessionExpired))
	assert.Len(t, rec.All(), 1)
}

func TestClient_UnauthorizedAgainAfterNewToken(t *testing.T) {
	token := "first"
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "expired"})
	}))
	t.Cleanup(srv.Close)

	rec := &notify.Recorder{}
	c := New(srv.URL, WithNotifier(rec), WithTokenSource(TokenFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		return token
	})))

	_, _ = c.Products().List(context.Background())
	_, _ = c.Products().List(context.Background())

	mu.Lock()
	token = "second"
	mu.Unlock()
	_, _ = c.Products().List(context.Background())

	assert.Equal(t, 2, rec.Count(MsgSessionExpired))
}

func TestAuth_LoginIsAnonymous(t *testing.T) {
	var body map[string]string
	var gotAuth string
	c, rec, bus := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "abc",
			"user":  map[string]any{"id": "1", "name": "A", "role": "admin"},
		})
	}, "leftover")

	published := false
	require.NoError(t, bus.OnSessionInvalidated(func(events.SessionInvalidatedEvent) { published = true }))

	resp, err := c.Auth().Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Token)
	require.NotNil(t, resp.User)
	assert.True(t, resp.User.IsAdmin())
	assert.Empty(t, gotAuth)
	assert.Equal(t, map[string]string{"email": "a@b.c", "password": "pw", "source": "admin"}, body)
	assert.Empty(t, rec.All())
	assert.False(t, published)
}

func TestAuth_LoginBadCredentialsIsNotSessionExpiry(t *testing.T) {
	c, rec, bus := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
	}, "")

	published := false
	require.NoError(t, bus.OnSessionInvalidated(func(events.SessionInvalidatedEvent) { published = true }))

	_, err := c.Auth().Login(context.Background(), Credentials{Email: "a@b.c", Password: "nope"})
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindAuth, apiErr.Kind)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.False(t, apiErr.Notified())
	assert.Empty(t, rec.All())
	assert.False(t, published)
}

func TestAuth_MeWithoutUser(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}, "abc")

	u, err := c.Auth().Me(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCategories_CreateUploadsMultipart(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Chips", r.FormValue("name"))

		f, hdr, err := r.FormFile("image")
		if assert.NoError(t, err) {
			defer f.Close()
			data, _ := io.ReadAll(f)
			assert.Equal(t, "chips.png", hdr.Filename)
			assert.Equal(t, "PNGDATA", string(data))
		}

		writeJSON(w, http.StatusCreated, Category{ID: "c1", Name: "Chips", Image: "/uploads/chips.png"})
	}, "abc")

	cat, err := c.Categories().Create(context.Background(), CategoryInput{
		Name:      "Chips",
		ImageName: "/tmp/pics/chips.png",
		Image:     strings.NewReader("PNGDATA"),
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", cat.ID)
}

func TestOrders_ListSendsQuery(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/all", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("startDate"))
		assert.Empty(t, r.URL.Query().Get("endDate"))
		writeJSON(w, http.StatusOK, OrderList{Orders: []Order{{ID: "o1", Status: OrderPending}}, Total: 11})
	}, "abc")

	list, err := c.Orders().List(context.Background(), OrderQuery{Page: 2, Limit: 10, StartDate: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 11, list.Total)
	assert.Equal(t, "Guest", list.Orders[0].CustomerName())
}

func TestPathf_EscapesSegments(t *testing.T) {
	assert.Equal(t, "/snacks/a%2Fb", pathf("/snacks/%s", "a/b"))
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, KindAuth, kindForStatus(401))
	assert.Equal(t, KindValidation, kindForStatus(422))
	assert.Equal(t, KindServer, kindForStatus(503))
	assert.Equal(t, KindUnknown, kindForStatus(418))
}

func TestAuth_LogoutFailureIsSilent(t *testing.T) {
	c, rec, bus := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "expired"})
	}, "abc")

	published := false
	require.NoError(t, bus.OnSessionInvalidated(func(events.SessionInvalidatedEvent) { published = true }))

	err := c.Auth().Logout(context.Background())
	require.Error(t, err)
	assert.Empty(t, rec.All())
	assert.False(t, published)
}
