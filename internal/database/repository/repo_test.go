package repository_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smysle/fbdl-go/internal/apperr"
	"github.com/smysle/fbdl-go/internal/database"
	"github.com/smysle/fbdl-go/internal/database/models"
	"github.com/smysle/fbdl-go/internal/database/repository"
)

const testTable = "recent_facebook_downloads"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := database.Open(sqlite.Open(dsn), testTable)
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newRecord(title string, at time.Time) *models.DownloadRecord {
	return &models.DownloadRecord{
		Title:          models.StrPtr(title),
		LowQualityURL:  models.StrPtr("https://cdn.example.com/" + title + "_low.mp4"),
		HighQualityURL: models.StrPtr("https://cdn.example.com/" + title + "_high.mp4"),
		OriginalURL:    "https://www.facebook.com/watch/?v=" + title,
		DownloadedAt:   at,
	}
}

func TestHistoryRepository_InsertAndListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewHistoryRepository(db, testTable)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"first", "second", "third"} {
		if _, err := repo.Insert(ctx, newRecord(title, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	latest, err := repo.Insert(ctx, newRecord("latest", time.Now()))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if latest.ID == 0 {
		t.Error("Insert() 应该返回数据库分配的 ID")
	}

	records, err := repo.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].ID != latest.ID || records[0].DisplayTitle("") != "latest" {
		t.Errorf("最近一条应该是刚插入的记录，实际是 %+v", records[0])
	}

	records, err = repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	want := []string{"latest", "third", "second", "first"}
	if len(records) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(records))
	}
	for i, w := range want {
		if got := records[i].DisplayTitle(""); got != w {
			t.Errorf("records[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestHistoryRepository_ListRecentLimitZero(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewHistoryRepository(db, testTable)

	records, err := repo.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty list, got %d", len(records))
	}
}

func TestHistoryRepository_ClearAll(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewHistoryRepository(db, testTable)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		if _, err := repo.Insert(ctx, newRecord(title, time.Now())); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	if err := repo.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}

	records, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ClearAll 后应该为空，实际有 %d 条", len(records))
	}
}

func TestHistoryRepository_CountSince(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewHistoryRepository(db, testTable)
	ctx := context.Background()

	repo.Insert(ctx, newRecord("old", time.Now().AddDate(0, 0, -30)))
	repo.Insert(ctx, newRecord("new", time.Now()))

	total, err := repo.CountSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("CountSince() error = %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 total, got %d", total)
	}

	weekly, err := repo.CountSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("CountSince() error = %v", err)
	}
	if weekly != 1 {
		t.Errorf("Expected 1 weekly, got %d", weekly)
	}
}

func TestHistoryRepository_StoreErrors(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewHistoryRepository(db, "missing_table")
	ctx := context.Background()

	if _, err := repo.Insert(ctx, newRecord("x", time.Now())); !errors.Is(err, apperr.ErrStoreWrite) {
		t.Errorf("Insert 应该返回 StoreWriteError，实际是 %v", err)
	}
	if _, err := repo.ListRecent(ctx, 5); !errors.Is(err, apperr.ErrStoreRead) {
		t.Errorf("ListRecent 应该返回 StoreReadError，实际是 %v", err)
	}
	if err := repo.ClearAll(ctx); !errors.Is(err, apperr.ErrStoreDelete) {
		t.Errorf("ClearAll 应该返回 StoreDeleteError，实际是 %v", err)
	}
}

func TestLogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLogRepository(db)
	ctx := context.Background()

	if err := repo.LogVisit(ctx, "Mozilla/5.0", "/"); err != nil {
		t.Fatalf("LogVisit() error = %v", err)
	}
	if err := repo.LogDownload(ctx, "https://www.facebook.com/reel/1", ""); err != nil {
		t.Fatalf("LogDownload() error = %v", err)
	}

	// 旧日志
	old := time.Now().AddDate(0, 0, -90)
	db.Create(&models.VisitorLog{VisitedAt: old})
	db.Create(&models.DownloadLog{CreatedAt: old})

	visits, _ := repo.CountVisitsSince(ctx, time.Time{})
	if visits != 2 {
		t.Errorf("Expected 2 visits, got %d", visits)
	}
	downloads, _ := repo.CountDownloadLogsSince(ctx, time.Now().AddDate(0, 0, -7))
	if downloads != 1 {
		t.Errorf("Expected 1 recent download log, got %d", downloads)
	}

	purged, err := repo.PurgeBefore(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("PurgeBefore() error = %v", err)
	}
	if purged != 2 {
		t.Errorf("Expected 2 purged, got %d", purged)
	}

	visits, _ = repo.CountVisitsSince(ctx, time.Time{})
	if visits != 1 {
		t.Errorf("Expected 1 visit after purge, got %d", visits)
	}
}

func TestHistoryRepository_ListAll(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewHistoryRepository(db, testTable)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		if _, err := repo.Insert(ctx, newRecord(title, time.Now())); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 3 || all[0].ID >= all[2].ID {
		t.Errorf("应该按 ID 升序返回全部记录: %+v", all)
	}
}

func TestLogRepository_TruncatesOnRuneBoundary(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewLogRepository(db)
	ctx := context.Background()

	// 499 字节后接一个三字节字符，截断点落在字符中间
	ua := strings.Repeat("a", 499) + "浏览器"
	if err := repo.LogVisit(ctx, ua, "/"); err != nil {
		t.Fatalf("LogVisit() error = %v", err)
	}

	var got models.VisitorLog
	if err := db.First(&got).Error; err != nil {
		t.Fatalf("读取访问日志失败: %v", err)
	}
	if got.UserAgent == nil {
		t.Fatal("UserAgent 不应该为空")
	}
	if !utf8.ValidString(*got.UserAgent) {
		t.Error("截断后应该仍是合法的 UTF-8")
	}
	if *got.UserAgent != strings.Repeat("a", 499) {
		t.Errorf("长度 = %d, want 499", len(*got.UserAgent))
	}
}
