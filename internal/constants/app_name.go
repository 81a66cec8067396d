package constants

const (
	APP_MAIN_PHONESHOP   = "phoneshop"
	APP_STOREFRONT       = "storefront"
	APP_CART_SWEEPER     = "cart-sweeper"
	APP_RATING_RECOMPUTE = "rating-recompute"
)
