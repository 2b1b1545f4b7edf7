package database

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.User{},
	&models.Post{},
	&models.Comment{},
	&models.Reply{},
	&models.Like{},
	&models.Follow{},
	&models.Save{},
	&models.Group{},
	&models.Member{},
	&models.SearchLog{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
