package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	engine   *gin.Engine
	products *MockProducts
	catalog  *MockCatalog
	cart     *MockCart
	auth     *MockAuth
}

func newTestServer(t *testing.T, pingErr error) testServer {
	t.Helper()
	s := testServer{
		products: new(MockProducts),
		catalog:  new(MockCatalog),
		cart:     new(MockCart),
		auth:     new(MockAuth),
	}
	s.engine = NewRouter(Services{
		Products:    s.products,
		Categories:  s.catalog,
		Collections: s.catalog,
		Spells:      s.catalog,
		Cart:        s.cart,
		Auth:        s.auth,
		Tokens:      stubTokens{},
		Health:      stubPinger{pingErr},
	}, CookieConfig{Days: 2})
	return s
}

func (s testServer) do(
	method, path, token string, body io.Reader, contentType string,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s testServer) doJSON(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	ct := ""
	if body != "" {
		r = strings.NewReader(body)
		ct = gin.MIMEJSON
	}
	return s.do(method, path, token, r, ct)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func wand() domain.Product {
	return domain.Product{
		ProductID:    7,
		Name:         "Wand",
		Quantity:     5,
		Price:        decimal.NewFromInt(10),
		CategoryID:   1,
		CollectionID: 1,
		CategoryName: "Wands",
		Images:       []domain.ProductImage{},
	}
}

func TestProductsHandler(t *testing.T) {
	t.Run("CreateWithoutImages", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.products.On("AddProduct", mock.Anything, mock.MatchedBy(func(np domain.NewProduct) bool {
			return np.Name == "Wand" && np.Quantity == 5 && np.Price.Equal(decimal.NewFromInt(10)) &&
				np.CategoryID == 1 && np.CollectionID == 1
		}), []domain.ImageUpload(nil)).
			Return(wand(), nil)

		w := s.doJSON(http.MethodPost, "/products", "admin",
			`{"name":"Wand","categoryId":1,"collectionId":1,"price":10,"quantity":5}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		p := decode[Product](t, w)
		assert.Equal(t, uint(7), p.ProductID)
		assert.Equal(t, "Wands", p.Category.CategoryName)
		assert.NotNil(t, p.Images)
		assert.Empty(t, p.Images)
		assert.Contains(t, w.Body.String(), `"images":[]`)
	})

	t.Run("CreateMultipart", func(t *testing.T) {
		s := newTestServer(t, nil)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("name", "Wand"))
		require.NoError(t, mw.WriteField("price", "10.50"))
		require.NoError(t, mw.WriteField("quantity", "5"))
		require.NoError(t, mw.WriteField("categoryId", "1"))
		require.NoError(t, mw.WriteField("collectionId", "2"))
		fw, err := mw.CreateFormFile("images", "wand.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		var gotImages []domain.ImageUpload
		s.products.On("AddProduct", mock.Anything, mock.MatchedBy(func(np domain.NewProduct) bool {
			return np.Name == "Wand" && np.Price.Equal(decimal.RequireFromString("10.5")) &&
				np.Quantity == 5 && np.CategoryID == 1 && np.CollectionID == 2
		}), mock.Anything).
			Run(func(args mock.Arguments) {
				gotImages = args.Get(2).([]domain.ImageUpload)
			}).
			Return(wand(), nil)

		w := s.do(http.MethodPost, "/products", "admin", &body, mw.FormDataContentType())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Len(t, gotImages, 1)
		assert.Equal(t, "wand.png", gotImages[0].Filename)

		rc, err := gotImages[0].Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("CreateBadFormNumber", func(t *testing.T) {
		s := newTestServer(t, nil)
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("quantity", "many"))
		require.NoError(t, mw.Close())

		w := s.do(http.MethodPost, "/products", "admin", &body, mw.FormDataContentType())
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "quantity must be an integer", decode[string](t, w))
	})

	t.Run("CreateValidationError", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.products.On("AddProduct", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.Product{}, fmt.Errorf("Catalog.AddProduct: %w: name is required", domain.ErrValidation))

		w := s.doJSON(http.MethodPost, "/products", "admin", `{"categoryId":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "name is required", decode[string](t, w))
	})

	t.Run("UnsupportedMediaType", func(t *testing.T) {
		s := newTestServer(t, nil)
		w := s.do(http.MethodPost, "/products", "admin", strings.NewReader("name=Wand"), "text/plain")
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		s.products.AssertNotCalled(t, "AddProduct", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CreateRequiresAdmin", func(t *testing.T) {
		s := newTestServer(t, nil)
		body := `{"name":"Wand"}`
		assert.Equal(t, http.StatusUnauthorized, s.doJSON(http.MethodPost, "/products", "", body).Code)
		assert.Equal(t, http.StatusUnauthorized, s.doJSON(http.MethodPost, "/products", "forged", body).Code)
		assert.Equal(t, http.StatusForbidden, s.doJSON(http.MethodPost, "/products", "user", body).Code)
	})

	t.Run("TokenFromCookie", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.products.On("DeleteProduct", mock.Anything, uint(7)).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/products/7", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookie, Value: "admin"})
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "product deleted", decode[string](t, w))
	})

	t.Run("Get", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.products.On("GetProduct", mock.Anything, uint(7)).Return(wand(), nil)
		s.products.On("GetProduct", mock.Anything, uint(8)).
			Return(domain.Product{}, fmt.Errorf("x: %w", domain.ErrNotFound))

		w := s.doJSON(http.MethodGet, "/products/7", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Wand", decode[Product](t, w).Name)
		assert.Contains(t, w.Body.String(), `"price":"10"`)

		w = s.doJSON(http.MethodGet, "/products/8", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Product not found", decode[string](t, w))

		w = s.doJSON(http.MethodGet, "/products/abc", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.products.On("ListProducts", mock.Anything).Return([]domain.Product{}, nil)

		w := s.doJSON(http.MethodGet, "/products", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("UpdatePartial", func(t *testing.T) {
		s := newTestServer(t, nil)
		qty := 9
		s.products.On("UpdateProduct", mock.Anything, uint(7),
			domain.ProductUpdate{Quantity: &qty}, []domain.ImageUpload(nil)).
			Return(wand(), nil)

		w := s.doJSON(http.MethodPut, "/products/7", "admin", `{"quantity":9}`)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		s.products.AssertExpectations(t)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.products.On("UpdateProduct", mock.Anything, uint(9), mock.Anything, mock.Anything).
			Return(domain.Product{}, domain.ErrNotFound)

		w := s.doJSON(http.MethodPut, "/products/9", "admin", `{"name":"Staff"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Product not found", decode[string](t, w))
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.products.On("DeleteProduct", mock.Anything, uint(9)).Return(domain.ErrNotFound)

		w := s.doJSON(http.MethodDelete, "/products/9", "admin", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InternalErrorHidesDetail", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.products.On("ListProducts", mock.Anything).
			Return([]domain.Product(nil), errors.New("pq: connection refused"))

		w := s.doJSON(http.MethodGet, "/products", "", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal Server Error", decode[string](t, w))
	})
}

func TestCatalogHandlers(t *testing.T) {
	t.Run("AddCategory", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.catalog.On("AddCategory", mock.Anything, "Wands").
			Return(domain.Category{CategoryID: 1, Name: "Wands"}, nil)
		s.catalog.On("AddCategory", mock.Anything, "Wand").
			Return(domain.Category{}, fmt.Errorf("x: %w", domain.ErrConflict))

		w := s.doJSON(http.MethodPost, "/categories", "admin", `{"name":"Wands"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Category added", decode[string](t, w))

		w = s.doJSON(http.MethodPost, "/categories", "admin", `{"name":"Wand"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Category already exists", decode[string](t, w))
	})

	t.Run("AddCollection", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.catalog.On("AddCollection", mock.Anything, "Winter").
			Return(domain.Collection{}, domain.ErrConflict)

		w := s.doJSON(http.MethodPost, "/collections", "admin", `{"name":"Winter"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "collection already exists", decode[string](t, w))
	})

	t.Run("ListCategories", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.catalog.On("ListCategories", mock.Anything).
			Return([]domain.Category{{CategoryID: 1, Name: "Wands"}}, nil)

		w := s.doJSON(http.MethodGet, "/categories", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"categoryId":1,"categoryName":"Wands"}]`, w.Body.String())
	})

	t.Run("ProductsByCategory", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.products.On("ListProductsByCategory", mock.Anything, uint(3)).
			Return([]domain.Product(nil), domain.ErrNotFound)

		w := s.doJSON(http.MethodGet, "/categories/3/products", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "no products found", decode[string](t, w))
	})

	t.Run("ProductsByCollection", func(t *testing.T) {
		s := newTestServer(t, nil)
		p := wand()
		p.Images = []domain.ProductImage{{Name: "products/a.png", URL: "http://blobs/products/a.png"}}
		s.products.On("ListProductsByCollection", mock.Anything, uint(1)).
			Return([]domain.Product{p}, nil)
		s.products.On("ListProductsByCollection", mock.Anything, uint(2)).
			Return([]domain.Product{}, nil)

		w := s.doJSON(http.MethodGet, "/collections/1/products", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[CollectionProducts](t, w)
		require.Len(t, res.Products, 1)
		assert.Equal(t, "products/a.png", res.Products[0].Images[0].ImageName)

		w = s.doJSON(http.MethodGet, "/collections/2/products", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"products":[]}`, w.Body.String())
	})

	t.Run("Spells", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.catalog.On("AddSpell", mock.Anything, mock.MatchedBy(func(ns domain.NewSpell) bool {
			return ns.Name == "Lumos" && ns.Price.Equal(decimal.NewFromInt(3))
		})).Return(domain.Spell{SpellID: 4, Name: "Lumos", Price: decimal.NewFromInt(3)}, nil)
		s.catalog.On("GetSpell", mock.Anything, uint(5)).Return(domain.Spell{}, domain.ErrNotFound)

		w := s.doJSON(http.MethodPost, "/spells", "admin", `{"name":"Lumos","price":"3"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, uint(4), decode[Spell](t, w).SpellID)

		w = s.doJSON(http.MethodPost, "/spells", "user", `{"name":"Lumos"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.doJSON(http.MethodGet, "/spells/5", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Spell not found", decode[string](t, w))
	})
}

func TestCartHandler(t *testing.T) {
	t.Run("RequiresLogin", func(t *testing.T) {
		s := newTestServer(t, nil)
		assert.Equal(t, http.StatusUnauthorized, s.doJSON(http.MethodGet, "/cart", "", "").Code)
	})

	t.Run("AddItem", func(t *testing.T) {
		s := newTestServer(t, nil)
		pid := uint(7)
		s.cart.On("AddItem", mock.Anything, uint(2), domain.CartItemInput{ProductID: &pid, Quantity: 2}).
			Return(domain.CartItem{ItemID: 1, ProductID: &pid, Quantity: 2, Name: "Wand"}, nil)

		w := s.doJSON(http.MethodPost, "/cart/items", "user", `{"productId":7,"quantity":2}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		item := decode[CartItem](t, w)
		assert.Equal(t, uint(1), item.CartItemID)
		assert.Nil(t, item.SpellID)
	})

	t.Run("AddItemInvalid", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.cart.On("AddItem", mock.Anything, uint(2), mock.Anything).
			Return(domain.CartItem{}, fmt.Errorf("%w: exactly one of productId and spellId is required", domain.ErrValidation))

		w := s.doJSON(http.MethodPost, "/cart/items", "user", `{"quantity":2}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UpdateRemoves", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.cart.On("UpdateItem", mock.Anything, uint(2), uint(1), 0).
			Return(domain.CartItem{}, true, nil)

		w := s.doJSON(http.MethodPut, "/cart/items/1", "user", `{"quantity":0}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "item removed", decode[string](t, w))
	})

	t.Run("UpdateRequiresQuantity", func(t *testing.T) {
		s := newTestServer(t, nil)
		w := s.doJSON(http.MethodPut, "/cart/items/1", "user", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RemoveForeignItem", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.cart.On("RemoveItem", mock.Anything, uint(2), uint(5)).Return(domain.ErrNotFound)

		w := s.doJSON(http.MethodDelete, "/cart/items/5", "user", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "item not found", decode[string](t, w))
	})

	t.Run("List", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.cart.On("ListItems", mock.Anything, uint(1)).Return([]domain.CartItem{}, nil)

		w := s.doJSON(http.MethodGet, "/cart", "admin", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestAuthHandler(t *testing.T) {
	t.Run("Signup", func(t *testing.T) {
		s := newTestServer(t, nil)
		in := domain.Signup{Username: "harry", Email: "h@hogwarts.uk", Password: "secret1"}
		s.auth.On("Signup", mock.Anything, in).
			Return(domain.Session{Token: "tok", UserID: 3}, nil)

		w := s.doJSON(http.MethodPost, "/signup", "",
			`{"username":"harry","email":"h@hogwarts.uk","password":"secret1"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, SessionResponse{Success: true, Token: "tok", UserID: 3},
			decode[SessionResponse](t, w))
	})

	t.Run("SignupDuplicate", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.auth.On("Signup", mock.Anything, mock.Anything).
			Return(domain.Session{}, domain.ErrConflict)

		w := s.doJSON(http.MethodPost, "/signup", "", `{"username":"harry"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "user already exists", decode[string](t, w))
	})

	t.Run("LoginSetsCookie", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.auth.On("Login", mock.Anything, domain.Credentials{Email: "h@hogwarts.uk", Password: "secret1"}).
			Return(domain.Session{Token: "tok", UserID: 3}, nil)

		w := s.doJSON(http.MethodPost, "/login", "", `{"email":"h@hogwarts.uk","password":"secret1"}`)
		require.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, tokenCookie, cookies[0].Name)
		assert.Equal(t, "tok", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 2*secondsPerDay, cookies[0].MaxAge)
	})

	t.Run("LoginRejected", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.auth.On("Login", mock.Anything, mock.Anything).
			Return(domain.Session{}, domain.ErrUnauthorized)

		w := s.doJSON(http.MethodPost, "/login", "", `{"email":"h@hogwarts.uk","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("Logout", func(t *testing.T) {
		s := newTestServer(t, nil)
		w := s.doJSON(http.MethodGet, "/logout", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "", cookies[0].Value)
		assert.Negative(t, cookies[0].MaxAge)
	})
}

func TestHealth(t *testing.T) {
	w := newTestServer(t, nil).doJSON(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = newTestServer(t, errors.New("down")).doJSON(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
