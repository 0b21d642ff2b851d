// Package store 提供 core.Store 的具体实现（接口定义在 core 包，避免循环依赖）。
//
// 内置实现：
//   - MemoryStore：进程内 KV（带 TTL），用于测试与单机场景
//   - RedisStore：生产环境使用
package store
