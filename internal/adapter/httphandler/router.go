package httphandler

import (
	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

type Services struct {
	Products    port.ProductsCatalog
	Categories  port.CategoriesCatalog
	Collections port.CollectionsCatalog
	Spells      port.SpellsCatalog
	Cart        port.CartKeeper
	Auth        port.Authenticator
	Tokens      port.TokenVerifier
	Health      port.Pinger
}

func NewRouter(s Services, cookie CookieConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery(), AllowJSON())

	public := r.Group("/")
	user := r.Group("/", IsLoggedIn(s.Tokens))
	admin := r.Group("/", IsLoggedIn(s.Tokens), CheckRole(domain.RoleAdmin))

	RegisterAuth(public, s.Auth, cookie)
	RegisterHealth(public, s.Health)
	RegisterProducts(public, admin, s.Products)
	RegisterCategories(public, admin, s.Categories, s.Products)
	RegisterCollections(public, admin, s.Collections, s.Products)
	RegisterSpells(public, admin, s.Spells)
	RegisterCart(user, s.Cart)

	return r
}
