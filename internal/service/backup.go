package service

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/smysle/fbdl-go/internal/database/models"
	"github.com/smysle/fbdl-go/pkg/logger"
)

const backupPrefix = "fbdl_history_"

// HistoryDumper 可导出全部记录的历史存储
type HistoryDumper interface {
	ListAll(ctx context.Context) ([]models.DownloadRecord, error)
	Insert(ctx context.Context, record *models.DownloadRecord) (*models.DownloadRecord, error)
}

// BackupService 下载历史备份
type BackupService struct {
	store HistoryDumper
	dir   string
	now   func() time.Time
}

// BackupData 备份文件内容
type BackupData struct {
	Version   string                  `json:"version"`
	CreatedAt time.Time               `json:"created_at"`
	Records   []models.DownloadRecord `json:"records"`
}

// BackupResult 备份结果
type BackupResult struct {
	Filename string
	FilePath string
	Size     int64
	Duration time.Duration
	Records  int
}

// BackupInfo 备份文件信息
type BackupInfo struct {
	Filename  string
	Size      int64
	CreatedAt time.Time
}

// NewBackupService 创建备份服务
func NewBackupService(store HistoryDumper, dir string) *BackupService {
	if dir == "" {
		dir = "backups"
	}
	return &BackupService{store: store, dir: dir, now: time.Now}
}

// Dir 备份目录
func (s *BackupService) Dir() string {
	return s.dir
}

// Backup 导出全部历史为 gzip 压缩的 JSON
func (s *BackupService) Backup(ctx context.Context) (*BackupResult, error) {
	start := time.Now()

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取下载历史失败: %w", err)
	}

	data, err := json.MarshalIndent(BackupData{
		Version:   "1",
		CreatedAt: s.now(),
		Records:   records,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化失败: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("创建备份目录失败: %w", err)
	}
	filename := fmt.Sprintf("%s%s.json.gz", backupPrefix, s.now().Format("20060102_150405"))
	path := filepath.Join(s.dir, filename)

	size, err := writeCompressed(path, data)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("file", filename).
		Int64("size", size).
		Int("records", len(records)).
		Msg("下载历史备份完成")

	return &BackupResult{
		Filename: filename,
		FilePath: path,
		Size:     size,
		Duration: time.Since(start),
		Records:  len(records),
	}, nil
}

func writeCompressed(path string, data []byte) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("创建文件失败: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	if _, err := gz.Write(data); err != nil {
		return 0, fmt.Errorf("压缩写入失败: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("压缩写入失败: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Restore 从备份恢复，已存在的记录跳过，返回写入条数
func (s *BackupService) Restore(ctx context.Context, path string) (int, error) {
	raw, err := readCompressed(path)
	if err != nil {
		return 0, fmt.Errorf("读取备份文件失败: %w", err)
	}

	var data BackupData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("解析备份数据失败: %w", err)
	}

	restored := 0
	for i := range data.Records {
		rec := data.Records[i]
		if _, err := s.store.Insert(ctx, &rec); err != nil {
			logger.Warn().Err(err).Int64("id", rec.ID).Msg("恢复记录失败，跳过")
			continue
		}
		restored++
	}

	logger.Info().Int("records", restored).Str("file", filepath.Base(path)).Msg("下载历史恢复完成")
	return restored, nil
}

func readCompressed(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if filepath.Ext(path) != ".gz" {
		return io.ReadAll(file)
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

// ListBackups 列出备份，最新的在前
func (s *BackupService) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), backupPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Filename:  entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// CleanOldBackups 删除超过保留天数的备份
func (s *BackupService) CleanOldBackups(keepDays int) (int, error) {
	if keepDays <= 0 {
		keepDays = 7
	}

	backups, err := s.ListBackups()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().AddDate(0, 0, -keepDays)
	deleted := 0
	for _, b := range backups {
		if !b.CreatedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, b.Filename)); err != nil {
			logger.Warn().Err(err).Str("file", b.Filename).Msg("删除旧备份失败")
			continue
		}
		deleted++
	}
	return deleted, nil
}

// FormatSize 格式化文件大小
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
