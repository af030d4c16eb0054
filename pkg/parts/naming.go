package parts

import (
	"fmt"
	"strings"
)

// Catalog filenames follow a fixed convention owned jointly by the catalog
// generator and this package: "<category>_<identifier>.png", e.g.
// "head_3001.png" or "torso_973pb1.png". The bare identifier is recovered by
// stripping the category prefix and the 4-character extension suffix. Keep
// this in sync with the generator; it is a wire contract, not a heuristic.

const catalogExt = ".png"

// externalImageURL is the image-hosting template results link to.
// Only the bare identifier is substituted.
const externalImageURL = "https://img.bricklink.com/ItemImage/MN/0/%s.png"

// Identifier strips the category prefix and extension from a catalog
// filename, returning the bare part identifier.
func (c Category) Identifier(catalogName string) (string, error) {
	prefix := string(c) + "_"
	if !strings.HasPrefix(catalogName, prefix) || !strings.HasSuffix(catalogName, catalogExt) {
		return "", fmt.Errorf("catalog name %q does not match %s naming convention", catalogName, c)
	}
	id := catalogName[len(prefix) : len(catalogName)-len(catalogExt)]
	if id == "" {
		return "", fmt.Errorf("catalog name %q has an empty identifier", catalogName)
	}
	return id, nil
}

// ExternalImageURL builds the hosted part-image URL for a bare identifier.
func ExternalImageURL(id string) string {
	return fmt.Sprintf(externalImageURL, id)
}
