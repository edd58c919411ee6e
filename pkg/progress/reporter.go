package progress

// Reporter 进度报告接口
//
// 实现集合是封闭的：Bar、Counter、Rich、Silent 与 Recorder。
// Finish 必须在所有 Update 之后恰好调用一次。
type Reporter interface {
	// Update 增加已传输的字节数
	Update(n uint64)

	// Finish 标记完成并结束当前行
	Finish()

	reporter()
}

// DefaultWidth 进度条默认宽度（字符数）
const DefaultWidth = 30
