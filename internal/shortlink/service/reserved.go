package service

// Reserved slugs that can never be claimed as short codes, regardless of
// what the link and username namespaces contain. These collide with routes
// and pages the product itself serves.
var reservedCodes = map[string]bool{
	"api":       true,
	"admin":     true,
	"app":       true,
	"auth":      true,
	"login":     true,
	"logout":    true,
	"signup":    true,
	"register":  true,
	"settings":  true,
	"dashboard": true,
	"analytics": true,
	"metrics":   true,
	"health":    true,
	"healthz":   true,
	"static":    true,
	"assets":    true,
	"about":     true,
	"pricing":   true,
	"terms":     true,
	"privacy":   true,
	"support":   true,
	"help":      true,
	"blog":      true,
	"404":       true,
}

func isReserved(code string) bool {
	return reservedCodes[code]
}
