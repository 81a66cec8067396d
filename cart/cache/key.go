package cache

const KEY_CART_SUMMARY = "carts:summary:%s"
