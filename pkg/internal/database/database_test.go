package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open("oracle", "", "", false)
	require.Error(t, err)
}

func TestMigrationEnforcesNaturalKeys(t *testing.T) {
	t.Parallel()

	db, err := Open(DriverSqlite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), "sl_", false)
	require.NoError(t, err)
	require.NoError(t, RunMigration(db))

	like := models.Like{TargetKind: models.LikeTargetPost, TargetID: 1, LikedByID: 2}
	require.NoError(t, db.Create(&like).Error)

	err = db.Create(&models.Like{TargetKind: models.LikeTargetPost, TargetID: 1, LikedByID: 2}).Error
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// Same user and id on another target kind is a different like.
	require.NoError(t, db.Create(&models.Like{TargetKind: models.LikeTargetComment, TargetID: 1, LikedByID: 2}).Error)

	require.NoError(t, db.Create(&models.Follow{FollowedByID: 1, ProfileID: 2}).Error)
	err = db.Create(&models.Follow{FollowedByID: 1, ProfileID: 2}).Error
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	require.NoError(t, db.Create(&models.SearchLog{Query: "abc", HitCount: 1}).Error)
	err = db.Create(&models.SearchLog{Query: "abc", HitCount: 1}).Error
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
