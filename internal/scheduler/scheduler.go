// Package scheduler 定时任务调度
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/smysle/fbdl-go/internal/config"
	"github.com/smysle/fbdl-go/internal/service"
	"github.com/smysle/fbdl-go/pkg/logger"
	"github.com/smysle/fbdl-go/pkg/utils"
)

// Pruner 日志清理
type Pruner interface {
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}

// Deps 任务依赖
type Deps struct {
	Downloader *service.Downloader
	Sessions   *service.SessionStore
	Logs       Pruner
	Stats      *service.StatsService
	Backup     *service.BackupService
}

// Scheduler 定时任务调度器
type Scheduler struct {
	cron *gocron.Scheduler
	cfg  config.SchedulerConfig
	deps Deps
	now  func() time.Time
}

// New 创建调度器
func New(cfg *config.Config, deps Deps) *Scheduler {
	s := gocron.NewScheduler(utils.Location(cfg.Log.Timezone))
	s.SetMaxConcurrentJobs(2, gocron.RescheduleMode)

	return &Scheduler{
		cron: s,
		cfg:  cfg.Scheduler,
		deps: deps,
		now:  time.Now,
	}
}

// Start 注册任务并异步启动
func (s *Scheduler) Start() error {
	logger.Info().Msg("启动定时任务调度器")
	if err := s.registerJobs(); err != nil {
		return err
	}
	s.cron.StartAsync()
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	logger.Info().Msg("停止定时任务调度器")
	s.cron.Stop()
}

// Jobs 已注册的任务数
func (s *Scheduler) Jobs() int {
	return len(s.cron.Jobs())
}

// registerJobs 注册所有定时任务
func (s *Scheduler) registerJobs() error {
	// 其他实例可能写入或清空了历史，定期同步会话中的最近列表
	if s.cfg.RefreshRecent && s.deps.Downloader != nil && s.deps.Sessions != nil {
		if _, err := s.cron.Every(5).Minutes().Tag("refresh_recent").Do(s.runRefresh); err != nil {
			return err
		}
		logger.Info().Msg("已注册: 最近下载同步任务 (每 5 分钟)")
	}

	if s.cfg.LogRetentionDays > 0 && s.deps.Logs != nil {
		if _, err := s.cron.Every(1).Day().At("03:00").Tag("purge_logs").Do(s.runPurge); err != nil {
			return err
		}
		logger.Info().Int("days", s.cfg.LogRetentionDays).Msg("已注册: 日志清理任务 (每天 03:00)")
	}

	if s.cfg.BackupHistory && s.deps.Backup != nil {
		if _, err := s.cron.Every(1).Day().At("04:00").Tag("backup_history").Do(s.runBackup); err != nil {
			return err
		}
		logger.Info().Str("dir", s.deps.Backup.Dir()).Msg("已注册: 下载历史备份任务 (每天 04:00)")
	}
	return nil
}

func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.RefreshSessions(ctx)
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.PurgeLogs(ctx); err != nil {
		logger.Error().Err(err).Msg("日志清理失败")
	}
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if _, err := s.BackupHistory(ctx); err != nil {
		logger.Error().Err(err).Msg("下载历史备份失败")
	}
}

// BackupHistory 备份下载历史并清理过期备份
func (s *Scheduler) BackupHistory(ctx context.Context) (*service.BackupResult, error) {
	res, err := s.deps.Backup.Backup(ctx)
	if err != nil {
		return nil, err
	}
	if deleted, err := s.deps.Backup.CleanOldBackups(s.cfg.BackupKeepDays); err != nil {
		logger.Warn().Err(err).Msg("清理旧备份失败")
	} else if deleted > 0 {
		logger.Info().Int("deleted", deleted).Msg("已清理旧备份")
	}
	return res, nil
}

// RefreshSessions 刷新所有会话的最近列表，返回刷新成功的会话数
func (s *Scheduler) RefreshSessions(ctx context.Context) int {
	refreshed := 0
	s.deps.Sessions.Each(func(sess *service.Session) {
		if ctx.Err() != nil {
			return
		}
		if notices := s.deps.Downloader.Refresh(ctx, sess); len(notices) == 0 {
			refreshed++
		}
	})
	logger.Debug().Int("sessions", refreshed).Msg("最近下载同步完成")
	return refreshed
}

// PurgeLogs 删除超过保留天数的访问和解析日志
func (s *Scheduler) PurgeLogs(ctx context.Context) (int64, error) {
	if s.cfg.LogRetentionDays <= 0 {
		return 0, nil
	}
	before := s.now().AddDate(0, 0, -s.cfg.LogRetentionDays)
	n, err := s.deps.Logs.PurgeBefore(ctx, before)
	if err != nil {
		return n, err
	}
	if s.deps.Stats != nil {
		s.deps.Stats.Invalidate()
	}
	logger.Info().Int64("rows", n).Time("before", before).Msg("日志清理完成")
	return n, nil
}
