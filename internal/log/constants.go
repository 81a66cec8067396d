package log

const (
	KEY_APP_NAME       = "app"
	KEY_TAG            = "tag"
	KEY_PROCESS        = "process"
	KEY_CONFIG         = "config"
	KEY_REQUEST_ID     = "requestId"
	KEY_REQUEST        = "request"
	KEY_REQUEST_HOST   = "host"
	KEY_REQUEST_IP     = "requesterIP"
	KEY_REQUEST_METHOD = "requestMethod"
	KEY_REQUEST_URI    = "requestURI"
	KEY_REQUEST_BODY   = "requestBody"
	KEY_TRACE_ID       = "traceId"
	KEY_SPAN_ID        = "spanId"

	KEY_OWNER_KEY     = "ownerKey"
	KEY_PRODUCT_ID    = "productId"
	KEY_ENTRY_ID      = "entryId"
	KEY_CART_ID       = "cartId"
	KEY_QUANTITY      = "quantity"
	KEY_CART_SUMMARY  = "cartSummary"
	KEY_CACHE_KEY     = "cacheKey"
	KEY_REVIEW_ID     = "reviewId"
	KEY_RATING        = "rating"
	KEY_REVIEWS_COUNT = "reviewsCount"
	KEY_PURGED_CARTS  = "purgedCarts"
	KEY_QUERY         = "query"
)
