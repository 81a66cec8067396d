package cache

const KEY_SEARCH_SUGGEST = "catalog:suggest:%s"
