package service

import (
	"context"
	"math"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/models"
)

var bookmarkColumns = []string{"id", "title", "url", "description", "rating"}

// Bookmarks is the SQL gateway backed by gorm.
type Bookmarks struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewBookmarks(gormDB *gorm.DB, l *zap.SugaredLogger) *Bookmarks {
	return &Bookmarks{
		db:     gormDB,
		logger: l,
	}
}

// stored ids never exceed the bigint range; larger values cannot match a row.
func outOfRange(id uint64) bool {
	return id > math.MaxInt64
}

func (s *Bookmarks) fail(op string, err error) error {
	s.logger.Errorw("persistence failure", "op", op, "error", err)
	return &PersistenceError{Op: op, Err: err}
}

func (s *Bookmarks) List(ctx context.Context) ([]models.Bookmark, error) {
	sql, args, err := squirrel.
		Select(bookmarkColumns...).
		From(db.TableBookmarks).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, s.fail("list", errors.Wrap(err, "build sql"))
	}

	rows := make([]db.Bookmark, 0)
	res := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows)
	if res.Error != nil {
		return nil, s.fail("list", errors.Wrap(res.Error, "scan"))
	}

	out := make([]models.Bookmark, len(rows))
	for i := range rows {
		out[i] = toModel(rows[i])
	}
	return out, nil
}

func (s *Bookmarks) Get(ctx context.Context, id uint64) (models.Bookmark, bool, error) {
	if outOfRange(id) {
		return models.Bookmark{}, false, nil
	}

	row := db.Bookmark{}
	res := s.db.WithContext(ctx).First(&row, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return models.Bookmark{}, false, nil
		}
		return models.Bookmark{}, false, s.fail("get", errors.Wrap(res.Error, "find bookmark"))
	}
	return toModel(row), true, nil
}

func (s *Bookmarks) Create(ctx context.Context, fields models.BookmarkFields) (models.Bookmark, error) {
	row := db.Bookmark{
		Title:       fields.Title,
		URL:         fields.URL,
		Description: fields.Description,
		Rating:      fields.Rating,
	}

	res := s.db.WithContext(ctx).Create(&row)
	if res.Error != nil {
		return models.Bookmark{}, s.fail("create", errors.Wrap(res.Error, "insert bookmark"))
	}
	return toModel(row), nil
}

func (s *Bookmarks) Update(ctx context.Context, id uint64, patch models.BookmarkPatch) (int64, error) {
	set := patchColumns(patch)
	if len(set) == 0 {
		return 0, s.fail("update", errors.New("nothing to update"))
	}
	if outOfRange(id) {
		return 0, nil
	}

	sql, args, err := squirrel.
		Update(db.TableBookmarks).
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return 0, s.fail("update", errors.Wrap(err, "build sql"))
	}

	res := s.db.WithContext(ctx).Exec(sql, args...)
	if res.Error != nil {
		return 0, s.fail("update", errors.Wrap(res.Error, "update bookmark"))
	}
	return res.RowsAffected, nil
}

func (s *Bookmarks) Delete(ctx context.Context, id uint64) (int64, error) {
	if outOfRange(id) {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Delete(&db.Bookmark{}, id)
	if res.Error != nil {
		return 0, s.fail("delete", errors.Wrap(res.Error, "delete bookmark"))
	}
	return res.RowsAffected, nil
}

func patchColumns(patch models.BookmarkPatch) map[string]interface{} {
	set := make(map[string]interface{}, 4)
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.URL != nil {
		set["url"] = *patch.URL
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	return set
}

func toModel(row db.Bookmark) models.Bookmark {
	return models.Bookmark{
		ID:          row.ID,
		Title:       row.Title,
		URL:         row.URL,
		Description: row.Description,
		Rating:      row.Rating,
	}
}
