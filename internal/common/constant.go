package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token
// on outbound requests.
const AccessTokenHeaderName = "access_token"

// MetadataKey names the keys of the client-side key/value metadata table.
type MetadataKey string

const (
	MetaUserName         MetadataKey = "username"
	MetaUserID           MetadataKey = "user_id"
	MetaSalt             MetadataKey = "salt"
	MetaVerifier         MetadataKey = "verifier"
	MetaActiveKind       MetadataKey = "active_kind"
	MetaActiveStart      MetadataKey = "active_start"
	MetaTotalFocusSecs   MetadataKey = "total_focus_seconds"
	MetaTotalItemsCaught MetadataKey = "total_items_caught"
	MetaLastSync         MetadataKey = "last_sync"
)
