package progress

// Recorder 是用于测试的记录型进度报告器
type Recorder struct {
	UpdateCalls       int
	Bytes             uint64
	FinishCalls       int
	UpdateAfterFinish bool
	Total             uint64
	Known             bool
}

// NewRecorder 创建新的记录型报告器
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (m *Recorder) reporter() {}

// Update 记录一次更新
func (m *Recorder) Update(n uint64) {
	if m.FinishCalls > 0 {
		m.UpdateAfterFinish = true
	}
	m.UpdateCalls++
	m.Bytes += n
}

// Finish 记录一次完成
func (m *Recorder) Finish() {
	m.FinishCalls++
}

// Reset 重置所有计数器
func (m *Recorder) Reset() {
	*m = Recorder{}
}

// RecorderFactory 为每次会话创建 Recorder 并保留引用
type RecorderFactory struct {
	Recorders []*Recorder
}

// Bounded 创建已知总量的 Recorder
func (f *RecorderFactory) Bounded(total uint64) Reporter {
	r := &Recorder{Total: total, Known: true}
	f.Recorders = append(f.Recorders, r)
	return r
}

// Unbounded 创建未知总量的 Recorder
func (f *RecorderFactory) Unbounded() Reporter {
	r := &Recorder{}
	f.Recorders = append(f.Recorders, r)
	return r
}

// Last 返回最近创建的 Recorder
func (f *RecorderFactory) Last() *Recorder {
	if len(f.Recorders) == 0 {
		return nil
	}
	return f.Recorders[len(f.Recorders)-1]
}
