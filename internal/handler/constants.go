package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixDelete is the suffix for delete routes.
	RouteSuffixDelete = "/delete"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamSlug is the slug parameter pattern.
	RouteParamSlug = "/{slug}"
	// RouteTagName is the tag name route pattern.
	RouteTagName = "/tag/{name}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteRegister is the registration route.
	RouteRegister = "/register"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RouteArticles is the public articles route.
	RouteArticles = "/articles"
	// RouteEvents is the public events route.
	RouteEvents = "/events"

	// RouteTags is the dashboard tags route.
	RouteTags = "/tags"
	// RouteUploadImage is the dashboard image upload route.
	RouteUploadImage = "/upload-image"
)

const (
	redirectDashboard         = "/dashboard"
	redirectDashboardArticles = redirectDashboard + RouteArticles
	redirectDashboardEvents   = redirectDashboard + RouteEvents
	redirectDashboardTags     = redirectDashboard + RouteTags
	redirectLogin             = RouteLogin

	redirectDashboardArticlesNew = redirectDashboardArticles + RouteSuffixNew
	redirectDashboardEventsNew   = redirectDashboardEvents + RouteSuffixNew

	redirectDashboardArticlesID = redirectDashboardArticles + "/%d"
	redirectDashboardEventsID   = redirectDashboardEvents + "/%d"
)
