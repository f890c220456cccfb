package storage

import (
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ProductImagePrefix is the key prefix shared by all product images.
const ProductImagePrefix = "products"

// ProductImageKey builds a collision-free object key for a product image:
// products/{productID}/{uuid}{ext}. Only the extension of filename is kept,
// lowercased; directory components and the base name are discarded.
//
// Example:
//
//	ProductImageKey(7, "../Front View.JPG") -> "products/7/3f0c...e1.jpg"
func ProductImageKey(productID int64, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	if !validExt(ext) {
		ext = ""
	}
	return path.Join(ProductImagePrefix, strconv.FormatInt(productID, 10), uuid.NewString()+ext)
}

// PublicURL joins a base URL and an object key with exactly one slash.
func PublicURL(baseURL, key string) string {
	if baseURL == "" {
		return key
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}

// validExt accepts a dot followed by 1-8 ASCII letters or digits.
func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 9 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
