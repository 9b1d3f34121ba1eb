// Package types 定义 rtlink 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 rtlink 内部包。
// 客户端传输实现、协商层与服务端共享这里的类型。
//
// # 文件组织
//
//   - transport.go - TransportKind、ACK 约定、帧大小上限
//   - errors.go    - ConnectError、SendError 与公共错误
//
// # 设计原则
//
//  1. 不可变性：TransportKind 协商完成后不再改变
//  2. 可序列化：TransportKind 实现 TextMarshaler/Unmarshaler，支持 JSON
//  3. 零依赖：不依赖任何其他 rtlink 内部包（最底层）
//
// # 使用示例
//
//	var ce *types.ConnectError
//	if errors.As(err, &ce) && ce.Reason == types.ReasonUnsupported {
//	    // 地址 scheme 不被该传输支持
//	}
package types
