package apipaths

// Single API surface paths. Used by routes and by tests.

const (
	Health        = "/api/health"
	Register      = "/api/register"
	Me            = "/api/me"
	MyListings    = "/api/my/listings"
	Listings      = "/api/listings"
	Tokens        = "/api/tokens"
	Status        = "/api/status"
	AdminUsers    = "/api/admin/users"
	AdminSettings = "/api/admin/settings"
)

func ListingByID(id string) string    { return Listings + "/" + id }
func ListingPublish(id string) string { return Listings + "/" + id + "/publish" }
func ListingSold(id string) string    { return Listings + "/" + id + "/sold" }
func UserPromote(id string) string    { return AdminUsers + "/" + id + "/promote" }
func UserDemote(id string) string     { return AdminUsers + "/" + id + "/demote" }
