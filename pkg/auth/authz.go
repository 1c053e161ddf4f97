package auth

import "github.com/empresasintegra/leykarin/pkg/model"

// CanView decides whether an admin may see a complaint. Superusers see
// everything; category-scoped admins see only complaints whose item belongs
// to their category; an admin with neither sees nothing.
func CanView(admin *model.Admin, complaint *model.Complaint) bool {
	if admin == nil || complaint == nil {
		return false
	}
	if admin.Superuser {
		return true
	}
	if admin.CategoryID == nil || complaint.Item == nil {
		return false
	}
	return *admin.CategoryID == complaint.Item.CategoryID
}
