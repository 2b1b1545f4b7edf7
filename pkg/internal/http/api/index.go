package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/auth"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/mail"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Controller struct {
	db       *gorm.DB
	store    storage.Uploader
	mailer   mail.Sender
	searcher search.Searcher
	tokens   *auth.Manager
	auth     *exts.Authenticator

	cookieSecure bool
}

func NewController(db *gorm.DB, store storage.Uploader, mailer mail.Sender, searcher search.Searcher, tokens *auth.Manager, cookieSecure bool) *Controller {
	return &Controller{
		db:           db,
		store:        store,
		mailer:       mailer,
		searcher:     searcher,
		tokens:       tokens,
		auth:         exts.NewAuthenticator(db, tokens),
		cookieSecure: cookieSecure,
	}
}

func (v *Controller) MapControllers(app *fiber.App, baseURL string) {
	required, optional := v.auth.Require(), v.auth.Optional()

	api := app.Group(baseURL)
	{
		api.Get("/healthcheck", v.healthCheck)

		users := api.Group("/users")
		{
			users.Post("/register", v.registerUser)
			users.Post("/verify", v.verifyUser)
			users.Post("/login", v.loginUser)
			users.Post("/logout", required, v.logoutUser)
			users.Get("/me", required, v.getCurrentUser)
			users.Get("/me/details", required, v.getCurrentUserDetails)
			users.Post("/refresh", v.refreshAccessToken)
			users.Patch("/change-password", required, v.changePassword)
			users.Post("/forgot-password", v.forgotPassword)
			users.Patch("/verify-reset-password", v.resetPassword)
			users.Post("/update-email", required, v.requestEmailChange)
			users.Post("/verify-change-email", required, v.verifyEmailChange)
			users.Patch("/update-details", required, v.updateUserDetails)
			users.Patch("/update-avatar", required, v.updateAvatar)
			users.Patch("/update-cover-photo", required, v.updateCoverPhoto)
			users.Get("/check-username/:username", v.checkUsername)
			users.Get("/:username", optional, v.getProfile)
		}

		posts := api.Group("/posts")
		{
			posts.Post("/create", required, v.createPost)
			posts.Post("/fork", required, v.forkPost)
			posts.Patch("/update/:postId", required, v.updatePost)
			posts.Delete("/delete/:postId", required, v.deletePost)
			posts.Get("/get/:postId", optional, v.getPost)
			posts.Get("/get-all", optional, v.listPosts)
		}

		likes := api.Group("/likes")
		{
			likes.Post("/toggle-post/:postId", required, v.toggleLike("postId", models.LikeTargetPost))
			likes.Post("/toggle-comment/:commentId", required, v.toggleLike("commentId", models.LikeTargetComment))
			likes.Post("/toggle-reply/:replyId", required, v.toggleLike("replyId", models.LikeTargetReply))
			likes.Get("/profiles/:postId", optional, v.listPostLikers)
		}

		followers := api.Group("/followers")
		{
			followers.Post("/toggle-follow/:profileId", required, v.toggleFollow)
			followers.Get("/followers/:username", optional, v.listFollowers)
			followers.Get("/followings/:username", optional, v.listFollowings)
			followers.Get("/suggested", required, v.listSuggestedProfiles)
		}

		comments := api.Group("/comments", required)
		{
			comments.Post("/create", v.createComment)
			comments.Patch("/update/:commentId", v.updateComment)
			comments.Delete("/delete/:commentId", v.deleteComment)
			comments.Get("/getall/:postId", v.listComments)
		}

		replies := api.Group("/replies", required)
		{
			replies.Post("/create", v.createReply)
			replies.Patch("/update/:replyId", v.updateReply)
			replies.Delete("/delete/:replyId", v.deleteReply)
			replies.Get("/getAll/:commentId", v.listReplies)
		}

		saved := api.Group("/saved", required)
		{
			saved.Post("/toggle/:postId", v.toggleSave)
			saved.Get("/", v.listSavedPosts)
		}

		groups := api.Group("/groups")
		{
			groups.Post("/create", required, v.createGroup)
			groups.Patch("/update/:groupId", required, v.updateGroup)
			groups.Patch("/update-icon/:groupId", required, v.updateGroupImage("icon", "group_icon"))
			groups.Patch("/update-banner/:groupId", required, v.updateGroupImage("banner", "group_banner"))
			groups.Patch("/update-settings/:groupId", required, v.updateGroupSettings)
			groups.Delete("/delete/:groupId", required, v.deleteGroup)
			groups.Get("/get/:groupId", optional, v.getGroup)
			groups.Get("/members/:groupId", optional, v.listGroupMembers)
		}

		members := api.Group("/members", required)
		{
			members.Patch("/toggle-admin-role/:groupId/:userId", v.toggleAdminRole)
			members.Post("/add-member/:groupId/:userId", v.addMember)
			members.Post("/join-group/:groupId/:adminId", v.joinGroup)
			members.Delete("/leave-group/:groupId", v.leaveGroup)
			members.Delete("/remove-member/:groupId/:userId", v.removeMember)
		}

		search := api.Group("/search")
		{
			search.Get("/posts", optional, v.searchPosts)
			search.Get("/users", optional, v.searchUsers)
			search.Get("/groups", optional, v.searchGroups)
			search.Get("/suggestions", v.searchSuggestions)
		}
	}
}

func (v *Controller) healthCheck(c *fiber.Ctx) error {
	return exts.OK(c, "Ok", "Server is up and running")
}
