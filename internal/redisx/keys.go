package redisx

import "fmt"

// Collection keys. Each holds the whole collection as one JSON array.
const (
	KeyProducts  = "timestore_products"
	KeyClients   = "timestore_clients"
	KeySuppliers = "timestore_suppliers"
	KeySales     = "timestore_sales"
	KeyPurchases = "timestore_purchases"
	KeyUsers     = "timestore_users_db"
)

const (
	// Session user: timestore_user:{session_id} -> user JSON
	KeySessionUser = "timestore_user:%s"

	// Session cart: timestore_cart:{session_id} -> cart lines JSON
	KeySessionCart = "timestore_cart:%s"

	// Change notification channel: timestore:changed:{key} -> {"origin": "...", "key": "..."}
	ChannelChanged = "timestore:changed:%s"
)

func SessionUserKey(sid string) string { return fmt.Sprintf(KeySessionUser, sid) }

func SessionCartKey(sid string) string { return fmt.Sprintf(KeySessionCart, sid) }

func ChangedChannel(key string) string { return fmt.Sprintf(ChannelChanged, key) }
