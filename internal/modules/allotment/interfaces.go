package allotment

import (
	"context"

	"gorm.io/gorm"

	"hostelms/internal/domain"
	"hostelms/internal/modules/identity"
)

// IdentityService is the account collaborator consumed by the registration
// flows. Accounts are created inside the registration transaction so a
// failed reservation leaves no orphan account behind.
type IdentityService interface {
	CreateAccountTx(ctx context.Context, tx *gorm.DB, p identity.CreateAccountParams) (*domain.User, error)
	IssueCredential(user *domain.User) (string, error)
}

// FileStore handles the profile-photo lifecycle around verification. It is
// optional; a nil store disables the hook.
type FileStore interface {
	PromoteProfilePhoto(ctx context.Context, sid string) error
	DiscardProfilePhoto(ctx context.Context, sid string) error
}
