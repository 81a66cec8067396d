package errors

import (
	"errors"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrProductNotFound    = errors.New("product not found")
	ErrEntryNotFound      = errors.New("cart entry not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrUnauthorized       = errors.New("cart entry belongs to another owner")
	ErrTransientStore     = errors.New("transient store failure")
	ErrCompareListFull    = errors.New("compare list is full")
)

const (
	KindInvalidQuantity    = "InvalidQuantity"
	KindProductNotFound    = "ProductNotFound"
	KindEntryNotFound      = "EntryNotFound"
	KindProductUnavailable = "ProductUnavailable"
	KindUnauthorized       = "Unauthorized"
	KindTransientStore     = "TransientStoreFailure"
	KindCompareListFull    = "CompareListFull"
)

// Kind maps a cart error to its wire name so the client adapter can tell
// every failure kind apart. Unknown errors map to the empty string.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return KindInvalidQuantity
	case errors.Is(err, ErrProductNotFound):
		return KindProductNotFound
	case errors.Is(err, ErrEntryNotFound):
		return KindEntryNotFound
	case errors.Is(err, ErrProductUnavailable):
		return KindProductUnavailable
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrTransientStore):
		return KindTransientStore
	case errors.Is(err, ErrCompareListFull):
		return KindCompareListFull
	}
	return ""
}

func FromKind(kind string) error {
	switch kind {
	case KindInvalidQuantity:
		return ErrInvalidQuantity
	case KindProductNotFound:
		return ErrProductNotFound
	case KindEntryNotFound:
		return ErrEntryNotFound
	case KindProductUnavailable:
		return ErrProductUnavailable
	case KindUnauthorized:
		return ErrUnauthorized
	case KindTransientStore:
		return ErrTransientStore
	case KindCompareListFull:
		return ErrCompareListFull
	}
	return nil
}
