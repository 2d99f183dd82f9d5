package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/chaos-io/cutout/util"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	EngineUnknown = "unknown"
	EngineUp      = "up"
	EngineDown    = "down"
)

// Pinger 推理引擎探活
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor 周期性探测推理引擎可用性，结果挂到 /api/health 上
// 不影响请求路径：引擎挂了请求照样发，由超时兜底
type Monitor struct {
	engine Pinger
	spec   string
	cron   *cron.Cron
	status atomic.Value
}

func NewMonitor(engine Pinger, spec string) *Monitor {
	m := &Monitor{
		engine: engine,
		spec:   spec,
		cron:   cron.New(),
	}
	m.status.Store(EngineUnknown)
	return m
}

func (m *Monitor) Start() error {
	if _, err := m.cron.AddFunc(m.spec, m.probe); err != nil {
		return err
	}
	m.cron.Start()
	// 启动时先探一次，不然要等一个周期才有状态
	go m.probe()
	return nil
}

func (m *Monitor) Stop() {
	m.cron.Stop()
}

// Status 返回 unknown/up/down
func (m *Monitor) Status() string {
	return m.status.Load().(string)
}

func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prev := m.Status()
	next := EngineUp
	if err := m.engine.Ping(ctx); err != nil {
		next = EngineDown
		if prev != EngineDown {
			util.Logger.Warn("inference engine unreachable", zap.Error(err))
		}
	} else if prev == EngineDown {
		util.Logger.Info("inference engine recovered")
	}
	m.status.Store(next)
}
