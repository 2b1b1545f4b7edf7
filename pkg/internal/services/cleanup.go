package services

import (
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type orphanSweep struct {
	what  string
	model any
	query string
}

// orphanSweeps removes rows whose parent is gone. Parents are swept before their children so one pass reaches the leaves.
func orphanSweeps(db *gorm.DB) []orphanSweep {
	table := func(model any) string {
		stmt := &gorm.Statement{DB: db}
		_ = stmt.Parse(model)
		return stmt.Schema.Table
	}
	posts, comments, replies := table(&models.Post{}), table(&models.Comment{}), table(&models.Reply{})
	users, groups := table(&models.User{}), table(&models.Group{})

	return []orphanSweep{
		{"comments", &models.Comment{}, "post_id NOT IN (SELECT id FROM " + posts + ")"},
		{"replies", &models.Reply{}, "comment_id NOT IN (SELECT id FROM " + comments + ")"},
		{"saves", &models.Save{}, "post_id NOT IN (SELECT id FROM " + posts + ")"},
		{"post likes", &models.Like{}, "target_kind = '" + string(models.LikeTargetPost) + "' AND target_id NOT IN (SELECT id FROM " + posts + ")"},
		{"comment likes", &models.Like{}, "target_kind = '" + string(models.LikeTargetComment) + "' AND target_id NOT IN (SELECT id FROM " + comments + ")"},
		{"reply likes", &models.Like{}, "target_kind = '" + string(models.LikeTargetReply) + "' AND target_id NOT IN (SELECT id FROM " + replies + ")"},
		{"members", &models.Member{}, "group_id NOT IN (SELECT id FROM " + groups + ")"},
		{"follows", &models.Follow{}, "profile_id NOT IN (SELECT id FROM " + users + ")"},
	}
}

// DoAutoDatabaseCleanup repairs cascades that stopped halfway and clears expired one-time codes.
func DoAutoDatabaseCleanup(db *gorm.DB) {
	log.Debug().Time("now", time.Now()).Msg("Now cleaning up entire database...")

	var count int64
	for _, sweep := range orphanSweeps(db) {
		tx := db.Where(sweep.query).Delete(sweep.model)
		if tx.Error != nil {
			log.Error().Err(tx.Error).Str("what", sweep.what).Msg("An error occurred when sweeping orphans...")
			continue
		}
		count += tx.RowsAffected
	}

	now := time.Now()
	for column, fields := range map[string][]string{
		"login_expires_at":          {"login_otp", "login_expires_at"},
		"reset_password_expires_at": {"reset_password_otp", "reset_password_expires_at"},
		"email_change_expires_at":   {"pending_email", "email_change_otp", "email_change_expires_at"},
	} {
		updates := make(map[string]any, len(fields))
		for _, field := range fields {
			updates[field] = nil
		}
		tx := db.Model(&models.User{}).Where(column+" < ?", now).Updates(updates)
		if tx.Error != nil {
			log.Error().Err(tx.Error).Str("column", column).Msg("An error occurred when clearing expired codes...")
			continue
		}
		count += tx.RowsAffected
	}

	log.Debug().Int64("affected", count).Msg("Clean up entire database accomplished.")
}
