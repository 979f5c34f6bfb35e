package outbound

import (
	"context"
	"errors"

	"github.com/swairua/medplus/domain/entity"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository reads and writes profile rows. Reads are used by the
// authorization checker and must be safe to call concurrently.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Upsert(ctx context.Context, user *entity.User) error
}
