package hardware

// Source 读数数据源接口
//
// 实现必须保证 ReadLine 不阻塞：没有完整的行时立即返回 ("", false)。
type Source interface {
	// Name 返回数据源标识（串口名或 "simulated"）
	Name() string
	// Available 是否已有完整的一行可读
	Available() bool
	// ReadLine 非阻塞读取一行（不含换行符）
	ReadLine() (string, bool)
	// Err 数据源停止产生数据的原因，仍在工作时为 nil
	Err() error
	// Close 关闭数据源
	Close() error
}
