package client

import (
	"math"
	"sync"
	"time"

	"github.com/chaos-io/cutout/model"
)

// 进度阶段标识，和服务端约定的回调形状保持一致
const (
	PhaseUpload         = "upload"
	PhaseModelLoading   = "model_loading"
	PhaseInference      = "inference"
	PhasePostProcessing = "post_processing"
	PhaseCompleted      = "completed"
)

// Phase 模拟时间线上的一段，时长是估出来的
type Phase struct {
	Key      string
	Duration time.Duration
}

// DefaultPhases 引擎不给中间进度，只能按经验时长模拟
var DefaultPhases = []Phase{
	{Key: PhaseUpload, Duration: 500 * time.Millisecond},
	{Key: PhaseModelLoading, Duration: 800 * time.Millisecond},
	{Key: PhaseInference, Duration: 3 * time.Second},
	{Key: PhasePostProcessing, Duration: 800 * time.Millisecond},
}

const (
	tickInterval = 50 * time.Millisecond
	phaseSteps   = 20
	// 平滑：显示值在 1 秒内分 20 步逼近目标，不许跳变
	smoothSteps = 20
	// 真实信号没到之前，模拟时间线最多走到这里
	holdPercent = 90.0
)

// Simulator 把一次不透明的远端调用包装成分阶段的进度动画
//
// 两个事件源喂一个显示值：定时 tick 推进模拟时间线，Complete/Stop
// 代表真实完成信号。真实信号永远赢：Complete 同步清掉计时器并把
// 显示值钉在 100，之后任何迟到的 tick 都不再改状态
type Simulator struct {
	mu       sync.Mutex
	phases   []Phase
	onUpdate func(model.ProgressInfo)

	ticker  *time.Ticker
	done    chan struct{}
	started bool
	settled bool

	phaseIndex int
	elapsed    time.Duration

	target  float64 // 模拟时间线给出的目标百分比
	display float64 // 平滑后的显示百分比，单调不减
}

// NewSimulator phases 为 nil 时用 DefaultPhases；onUpdate 可以为 nil
func NewSimulator(phases []Phase, onUpdate func(model.ProgressInfo)) *Simulator {
	if len(phases) == 0 {
		phases = DefaultPhases
	}
	return &Simulator{
		phases:   phases,
		onUpdate: onUpdate,
		done:     make(chan struct{}),
	}
}

// Start 启动模拟时间线，重复调用无效
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.settled {
		return
	}
	s.started = true
	s.ticker = time.NewTicker(tickInterval)

	go s.run()
}

// run 唯一拥有进度状态的调度循环
func (s *Simulator) run() {
	for {
		select {
		case <-s.done:
			s.ticker.Stop()
			return
		case <-s.ticker.C:
			s.tick()
		}
	}
}

func (s *Simulator) tick() {
	s.mu.Lock()

	if s.settled {
		s.mu.Unlock()
		return
	}

	var update model.ProgressInfo
	if s.phaseIndex < len(s.phases) {
		phase := s.phases[s.phaseIndex]
		s.elapsed += tickInterval

		step := int(float64(s.elapsed) / float64(phase.Duration) * phaseSteps)
		if step > phaseSteps {
			step = phaseSteps
		}
		update = model.ProgressInfo{Key: phase.Key, Current: step, Total: phaseSteps}

		if s.elapsed >= phase.Duration {
			s.elapsed = 0
			s.phaseIndex++
		}

		s.target = s.overallPercent()
	} else {
		// 阶段走完真实信号还没来：停在 hold 点等
		last := s.phases[len(s.phases)-1]
		update = model.ProgressInfo{Key: last.Key, Current: phaseSteps, Total: phaseSteps}
		s.target = holdPercent
	}

	// 显示值平滑逼近目标，永不回退
	if diff := s.target - s.display; diff > 0 {
		s.display = math.Min(s.target, s.display+diff/smoothSteps+0.01)
	}

	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(update)
	}
}

// overallPercent 按各阶段估时加权换算整体进度，封顶 holdPercent
func (s *Simulator) overallPercent() float64 {
	var total, passed time.Duration
	for i, p := range s.phases {
		total += p.Duration
		if i < s.phaseIndex {
			passed += p.Duration
		}
	}
	if s.phaseIndex < len(s.phases) {
		passed += s.elapsed
	}
	if total == 0 {
		return holdPercent
	}
	return math.Min(holdPercent, float64(passed)/float64(total)*100)
}

// Complete 真实调用成功：同步清掉计时器，显示值立刻钉在 100
func (s *Simulator) Complete() {
	s.mu.Lock()

	if s.settled {
		s.mu.Unlock()
		return
	}
	s.settle()
	s.target = 100
	s.display = 100

	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(model.ProgressInfo{Key: PhaseCompleted, Current: 100, Total: 100})
	}
}

// Stop 真实调用失败或组件卸载：只拆掉计时器，不发完成事件
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settled {
		return
	}
	s.settle()
}

// 调用方必须已持锁
func (s *Simulator) settle() {
	s.settled = true
	close(s.done)
}

// Percent 当前显示百分比
func (s *Simulator) Percent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(math.Round(s.display))
}

// Settled 是否已经结束（完成或拆除）
func (s *Simulator) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled
}
