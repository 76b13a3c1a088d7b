package httpapi

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"webcourse/internal/adapters/httpapi/middleware"
	"webcourse/internal/admin"
	"webcourse/internal/core/account"
	"webcourse/internal/core/group"
	"webcourse/internal/core/post"
	"webcourse/internal/core/user"
	userapp "webcourse/internal/core/user/service"
	accountPort "webcourse/internal/ports/account"
	flashPort "webcourse/internal/ports/flash"
	"webcourse/internal/urls"
	"webcourse/internal/web"
)

// UserUseCase is the inbound port the user pages and admin need
type UserUseCase interface {
	CreateUser(ctx context.Context, in userapp.CreateUserInput) (*user.User, error)
	GetUser(ctx context.Context, id uint) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	GetArchivedUser(ctx context.Context, username string, id uint) (*user.User, error)
	ListActiveUsers(ctx context.Context) ([]*user.User, error)
	ListUsersByYear(ctx context.Context, year int) ([]*user.User, error)
	SearchUsers(ctx context.Context, term string) ([]*user.User, error)
	RecentPosts(ctx context.Context, u *user.User, days int) ([]*post.Post, error)
	ActivateUsers(ctx context.Context, ids []uint) (int64, error)
	DeactivateUsers(ctx context.Context, ids []uint) (int64, error)
	DeleteUsers(ctx context.Context, ids []uint) (int64, error)
	AdminList(ctx context.Context, q admin.Query) ([]*user.User, int64, error)
	AdminGet(ctx context.Context, id uint) (*user.User, error)
}

type PostUseCase interface {
	CreatePublishedPost(ctx context.Context, title, content, authorUsername string) (*post.Post, error)
	GetPost(ctx context.Context, id uint) (*post.Post, error)
	ListPublished(ctx context.Context) ([]*post.Post, error)
	UpdatePost(ctx context.Context, id uint, title, content string) (*post.Post, error)
	DeletePost(ctx context.Context, id uint) error
	LikePost(ctx context.Context, id uint, username string) (*post.Post, error)
	UnlikePost(ctx context.Context, id uint, username string) (*post.Post, error)
	Likers(ctx context.Context, id uint) ([]*user.User, error)
	PublishPosts(ctx context.Context, ids []uint) (int64, error)
	UnpublishPosts(ctx context.Context, ids []uint) (int64, error)
	DeletePosts(ctx context.Context, ids []uint) (int64, error)
	AdminList(ctx context.Context, q admin.Query) ([]*post.Post, int64, error)
	AdminGet(ctx context.Context, id uint) (*post.Post, error)
}

type GroupUseCase interface {
	CreateGroup(ctx context.Context, name, description string) (*group.Group, error)
	GetGroup(ctx context.Context, id uint) (*group.Group, error)
	ListGroups(ctx context.Context) ([]*group.Group, error)
	Members(ctx context.Context, id uint) ([]*user.User, error)
	Join(ctx context.Context, id uint, username string) (*group.Group, error)
	Leave(ctx context.Context, id uint, username string) (*group.Group, error)
	DeleteGroups(ctx context.Context, ids []uint) (int64, error)
	AdminList(ctx context.Context, q admin.Query) ([]*group.Group, int64, error)
	AdminGet(ctx context.Context, id uint) (*group.Group, error)
}

type AccountUseCase interface {
	Login(ctx context.Context, username, password string) (*accountPort.Session, error)
	Authenticate(ctx context.Context, token string) (*account.Account, error)
}

// Dependencies is everything SetupRoutes wires into the engine.
type Dependencies struct {
	Users    UserUseCase
	Posts    PostUseCase
	Groups   GroupUseCase
	Accounts AccountUseCase
	Flash    flashPort.Store
	Logger   *zap.Logger

	// Registerer and Gatherer default to a fresh registry when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	SessionTTL time.Duration
}

// SetupRoutes builds the engine: gin routes for admin, accounts and metrics, the resolver for everything else.
func SetupRoutes(deps Dependencies) (*gin.Engine, error) {
	registerValidators()
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Registerer == nil || deps.Gatherer == nil {
		reg := prometheus.NewRegistry()
		deps.Registerer, deps.Gatherer = reg, reg
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = 24 * time.Hour
	}

	routes := urls.NewTable[HandlerFunc](urls.NewRegistry())
	pg := &pages{flash: deps.Flash, routes: routes}

	tmpl, err := web.Parse(template.FuncMap{"url": routes.Reverse})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	metrics := middleware.NewMetrics(deps.Registerer)
	site, err := NewAdminSite(deps.Users, deps.Posts, deps.Groups, metrics)
	if err != nil {
		return nil, fmt.Errorf("admin site: %w", err)
	}

	home := &HomeController{pages: pg}
	uc := NewUserController(deps.Users, pg)
	pc := NewPostController(deps.Posts, pg)
	gc := NewGroupController(deps.Groups, pg)
	ac := NewAccountController(deps.Accounts, pg)
	adm := NewAdminController(site, pg)

	if err := mountRoutes(routes, home, uc, gc, pc); err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(
		middleware.RequestLogger(deps.Logger),
		gin.CustomRecovery(func(c *gin.Context, rec any) {
			pg.serverError(c, fmt.Errorf("panic: %v", rec))
		}),
		metrics.Handler(),
		middleware.FlashSession(deps.SessionTTL),
		middleware.Identity(deps.Accounts),
	)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	accounts := r.Group("/accounts")
	accounts.GET("/login/", ac.LoginForm)
	accounts.POST("/login/", ac.Login)
	accounts.POST("/logout/", ac.Logout)

	staff := r.Group("/admin", middleware.RequireStaff())
	staff.GET("/", adm.Index)
	staff.GET("/:model/", adm.Changelist)
	staff.POST("/:model/", adm.Action)
	staff.GET("/:model/:id/", adm.Change)

	r.NoRoute(pg.dispatch)
	return r, nil
}

// mountRoutes registers the resolver routes. Order matters: the first matching route serves the request.
func mountRoutes(t *urls.Table[HandlerFunc], home *HomeController, uc *UserController, gc *GroupController, pc *PostController) error {
	paths := []struct {
		pattern string
		handler HandlerFunc
		name    string
	}{
		{"", home.Welcome, "home"},

		{"users/", uc.Home(), "users:home"},
		{"users/list/", uc.List, "users:list"},
		{"users/create/", uc.Create(), "users:create"},
		{"users/<int:id>/", uc.Detail, "users:detail"},
		{"users/profile/<username:username>/", uc.Profile, "users:profile"},
		{"users/archive/<username:username>/<int:id>/", uc.Archive, "users:archive"},
		{"users/history/<year:year>/", uc.History(), "users:history"},

		{"groups/", gc.List(), "groups:list"},
		{"groups/create/", gc.Create(), "groups:create"},
		{"groups/<int:id>/", gc.Detail, "groups:detail"},
		{"groups/<int:id>/members/", gc.MemberList, "groups:members"},
		{"groups/<int:id>/join/", gc.Join, "groups:join"},
		{"groups/<int:id>/leave/", gc.Leave, "groups:leave"},

		{"posts/", pc.List(), "posts:list"},
		{"posts/create/", pc.Create(), "posts:create"},
		{"posts/<int:id>/", pc.Detail, "posts:detail"},
		{"posts/<int:id>/edit/", pc.Edit, "posts:edit"},
		{"posts/<int:id>/delete/", pc.Delete, "posts:delete"},
		{"posts/<int:id>/like/", pc.Like, "posts:like"},
		{"posts/<int:id>/unlike/", pc.Unlike, "posts:unlike"},
	}
	for _, p := range paths {
		if err := t.Path(p.pattern, p.handler, p.name); err != nil {
			return err
		}
	}
	return t.RegexPath(`^users/search/(?P<term>\w+)/$`, uc.Search(), "users:search")
}
