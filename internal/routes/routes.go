package routes

const (
	// Health
	Health = "/health"

	// Auth
	Login    = "/login"
	Register = "/register"
	Logout   = "/logout"

	Dashboard = "/"

	// Buildings
	Buildings       = "/buildings/"
	BuildingsAdd    = "/buildings/add"
	BuildingsEdit   = "/buildings/edit/{id}"
	BuildingsDelete = "/buildings/delete/{id}"
	BuildingsDetail = "/buildings/detail/{id}"

	// Tenants
	Tenants       = "/tenants/"
	TenantsAdd    = "/tenants/add"
	TenantsEdit   = "/tenants/edit/{id}"
	TenantsDelete = "/tenants/delete/{id}"

	// Lodge
	Lodge         = "/lodge/"
	LodgeAdd      = "/lodge/add"
	LodgeEdit     = "/lodge/edit/{id}"
	LodgeCheckout = "/lodge/checkout/{id}"
	LodgeDelete   = "/lodge/delete/{id}"

	// Monthly summaries
	Summaries       = "/summaries/"
	SummariesAdd    = "/summaries/add"
	SummariesEdit   = "/summaries/edit/{id}"
	SummariesDelete = "/summaries/delete/{id}"
	SummariesExport = "/summaries/export"

	StatementsSummary = "/statements/summary"

	// JSON API
	APIDashboard = "/api/v1/dashboard"
)
