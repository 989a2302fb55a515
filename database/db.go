package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	glogger "gorm.io/gorm/logger"
)

const busyTimeoutPragma = "busy_timeout(5000)"

// SQL keeps preferences, protected chats, sessions and premium grants in a
// SQLite database.
type SQL struct {
	db  *gorm.DB
	now func() time.Time
}

func Open(ctx context.Context, path string) (*SQL, error) {
	logger := log.FromContext(ctx)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := gorm.Open(GetDialect(path), &gorm.Config{
		Logger: glogger.New(logger, glogger.Config{
			Colorful:                  true,
			SlowThreshold:             time.Second * 5,
			LogLevel:                  glogger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("Database connected")
	if err := db.AutoMigrate(&UserField{}, &ProtectedChat{}, &UserSession{}, &PremiumUser{}); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	logger.Debug("Database migrated")
	return &SQL{db: db, now: time.Now}, nil
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQL) GetField(ctx context.Context, userID int64, key string) (string, bool, error) {
	var f UserField
	err := s.db.WithContext(ctx).Where("user_id = ? AND name = ?", userID, key).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return f.Value, true, nil
}

func (s *SQL) SetField(ctx context.Context, userID int64, key, value string) error {
	f := UserField{UserID: userID, Name: key, Value: value}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&f).Error
}

func (s *SQL) ClearFields(ctx context.Context, userID int64, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND name IN ?", userID, keys).
		Delete(&UserField{}).Error
}

func (s *SQL) ListProtected(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&ProtectedChat{}).Pluck("chat_id", &ids).Error
	return ids, err
}

func (s *SQL) AddProtected(ctx context.Context, chatID int64) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ProtectedChat{ChatID: chatID}).Error
}

func (s *SQL) GetSession(ctx context.Context, userID int64) (string, time.Time, bool, error) {
	var us UserSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, s.now()).
		First(&us).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, err
	}
	return us.Session, us.ExpiresAt, true, nil
}

func (s *SQL) SetSession(ctx context.Context, userID int64, session string, expiresAt time.Time) error {
	us := UserSession{UserID: userID, Session: session, ExpiresAt: expiresAt}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"session", "expires_at", "updated_at"}),
	}).Create(&us).Error
}

func (s *SQL) RemoveSession(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&UserSession{}).Error
}

func (s *SQL) GetPremium(ctx context.Context, userID int64) (time.Time, bool, error) {
	var pu PremiumUser
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, s.now()).
		First(&pu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return pu.ExpiresAt, true, nil
}

func (s *SQL) SetPremium(ctx context.Context, userID int64, expiresAt time.Time) error {
	pu := PremiumUser{UserID: userID, ExpiresAt: expiresAt}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
	}).Create(&pu).Error
}

func (s *SQL) RemovePremium(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&PremiumUser{}).Error
}

// PurgeExpired deletes expired sessions and premium grants and returns the
// number of rows removed.
func (s *SQL) PurgeExpired(ctx context.Context) (int64, error) {
	now := s.now()
	r1 := s.db.WithContext(ctx).Unscoped().Where("expires_at <= ?", now).Delete(&UserSession{})
	if r1.Error != nil {
		return 0, r1.Error
	}
	r2 := s.db.WithContext(ctx).Unscoped().Where("expires_at <= ?", now).Delete(&PremiumUser{})
	if r2.Error != nil {
		return r1.RowsAffected, r2.Error
	}
	return r1.RowsAffected + r2.RowsAffected, nil
}

// RunReaper calls PurgeExpired every interval until ctx is done.
func (s *SQL) RunReaper(ctx context.Context, interval time.Duration) {
	logger := log.FromContext(ctx).WithPrefix("reaper")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				logger.Error("Failed to purge expired records", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("Purged expired records", "count", n)
			}
		}
	}
}
