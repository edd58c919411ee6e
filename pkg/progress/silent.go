package progress

// Silent 静默进度报告器，只计数不输出
type Silent struct {
	current  uint64
	finished bool
}

// NewSilent 创建新的静默报告器
func NewSilent() *Silent {
	return &Silent{}
}

func (s *Silent) reporter() {}

// Update 增加字节数（不输出）
func (s *Silent) Update(n uint64) { s.current += n }

// Finish 标记完成（不输出）
func (s *Silent) Finish() { s.finished = true }

// Current 返回累计字节数
func (s *Silent) Current() uint64 { return s.current }
