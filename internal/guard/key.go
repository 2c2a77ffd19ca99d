// Package guard serialises storefront actions per logical key and throttles
// bursts of user input.
package guard

import (
	"fmt"
	"strconv"
)

// Kind names the operation an action key belongs to.
type Kind string

const (
	KindAdd    Kind = "add"
	KindUpdate Kind = "update"
	KindRemove Kind = "remove"
	KindSearch Kind = "search"
	KindStatus Kind = "status"
	KindBulk   Kind = "bulk"
	KindDelete Kind = "delete"
)

// Key identifies one logical operation instance, e.g. "update-7".
type Key string

// NewKey builds the key for kind applied to target id.
func NewKey(kind Kind, id int64) Key {
	return Key(fmt.Sprintf("%s-%s", kind, strconv.FormatInt(id, 10)))
}

// NewTargetKey builds a key for targets that are not numeric ids (admin URLs).
func NewTargetKey(kind Kind, target string) Key {
	return Key(fmt.Sprintf("%s-%s", kind, target))
}

// GlobalKey is the key of an operation without a target, such as the header search.
func GlobalKey(kind Kind) Key {
	return Key(kind)
}

func (k Key) String() string {
	return string(k)
}
