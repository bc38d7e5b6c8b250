package navigation

// Route is one page of the application.
type Route struct {
	Path string `json:"path"`
	Name string `json:"name"`
	// Service is false for pages with no backing service (login, register, ...).
	Service bool `json:"service"`
}

const (
	PathHome             = "/"
	PathLogin            = "/login"
	PathRegister         = "/register"
	PathDashboard        = "/dashboard"
	PathProfile          = "/profile"
	PathRecords          = "/records"
	PathManualAutomation = "/manual-automation"
	PathAbout            = "/about"
	PathCropInfo         = "/crop-info"
	PathSoilMoisture     = "/soil-moisture"
	PathCropDisease      = "/crop-disease"
	PathWeather          = "/weather"
	PathContact          = "/contact"
)

var routes = []Route{
	{Path: PathHome, Name: "Home"},
	{Path: PathLogin, Name: "Login"},
	{Path: PathRegister, Name: "Register"},
	{Path: PathDashboard, Name: "Dashboard", Service: true},
	{Path: PathProfile, Name: "Profile"},
	{Path: PathRecords, Name: "Previous Records"},
	{Path: PathManualAutomation, Name: "Manual Automation"},
	{Path: PathAbout, Name: "About"},
	{Path: PathCropInfo, Name: "Crop Info"},
	{Path: PathSoilMoisture, Name: "Soil Moisture", Service: true},
	{Path: PathCropDisease, Name: "Crop Disease", Service: true},
	{Path: PathWeather, Name: "Weather"},
	{Path: PathContact, Name: "Contact", Service: true},
}

// Routes returns a copy of the route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

func known(path string) bool {
	for _, r := range routes {
		if r.Path == path {
			return true
		}
	}
	return false
}
