// Package perm implements the sector-scoped visibility and edit rules.
// All functions are pure: no I/O, no clock, no mutation.
package perm

import "github.com/escolar/inventario/internal/model"

// CanView reports whether u may see it. Rules, first match wins:
//
//  1. nil (unauthenticated) user: no.
//  2. admin: yes.
//  3. public item: yes.
//  4. sector-role user with an assigned sector: yes if the item belongs
//     to that sector or the sector was explicitly authorized.
//  5. otherwise: no.
//
// Sector names compare as exact strings, case-sensitive. A sector-role
// user without an assigned sector falls through to rule 5.
func CanView(u *model.User, it *model.Item) bool {
	if u == nil {
		return false
	}
	if u.Role == model.RoleAdmin {
		return true
	}
	if it.IsPublic {
		return true
	}
	switch u.Role {
	case model.RoleSector:
		if u.Sector == "" {
			return false
		}
		if it.Sector == u.Sector {
			return true
		}
		for _, s := range it.AuthorizedSectors {
			if s == u.Sector {
				return true
			}
		}
		return false
	case model.RoleUser:
		return false
	}
	// Unknown roles never grant access.
	return false
}

// CanEdit reports whether u may request transitions or edits on it.
// Stricter than CanView: only admins and sector-role users whose sector
// owns the item. View access through IsPublic or AuthorizedSectors does
// not grant edit rights.
func CanEdit(u *model.User, it *model.Item) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case model.RoleAdmin:
		return true
	case model.RoleSector:
		return u.Sector != "" && u.Sector == it.Sector
	case model.RoleUser:
		return false
	}
	return false
}

// Filter returns the subset of items visible to u, preserving order.
func Filter(u *model.User, items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for i := range items {
		if CanView(u, &items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}
