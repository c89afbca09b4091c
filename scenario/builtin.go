package scenario

// Builtin returns the built-in scenario with the given name, if one
// exists. Built-in scenarios are not persisted; each call returns a
// fresh copy.
func Builtin(name string) (*Scenario, bool) {
	factory, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// BuiltinNames lists the names of all built-in scenarios.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}

var builtins = map[string]func() *Scenario{
	"rbac-frontend": RBACFrontend,
}

// RBACFrontend returns the built-in acceptance scenario for the RBAC
// front-end: log in through the login form, verify the dashboard
// renders, then visit the user and role management pages and capture a
// screenshot of each. Credential placeholders expand to the target's
// stored credentials at run time.
func RBACFrontend() *Scenario {
	return &Scenario{
		Name:        "rbac-frontend",
		Description: "Login, dashboard, and management page rendering checks for the RBAC front-end.",
		Steps: Steps{
			{Action: ActionNavigate, Path: "/login"},
			{Action: ActionFill, Placeholder: "Username", Value: "{{username}}"},
			{Action: ActionFill, Placeholder: "Password", Value: "{{password}}"},
			{Action: ActionClick, Role: "button", Name: "Login"},
			{Action: ActionExpectURL, Path: "/", TimeoutMS: 10000},
			{Action: ActionExpectText, Text: "แดชบอร์ด"},
			{Action: ActionClick, Role: "link", Name: "จัดการผู้ใช้"},
			{Action: ActionExpectHeading, Name: "User Management"},
			{Action: ActionScreenshot, File: "user-management-page.png"},
			{Action: ActionClick, Role: "link", Name: "จัดการสิทธิ์"},
			{Action: ActionExpectHeading, Name: "Role Management"},
			{Action: ActionScreenshot, File: "role-management-page.png"},
		},
	}
}
