package task

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/highway-planner/planner"
	"github.com/tsinghua-fib-lab/highway-planner/roadway"
	"github.com/tsinghua-fib-lab/highway-planner/utils/config"
	"github.com/tsinghua-fib-lab/highway-planner/utils/input"
)

const (
	healthPath      = "/healthz"
	shutdownTimeout = 5 * time.Second
)

var log = logrus.WithField("module", "task")

// waitForServerReady 等待服务器就绪
// 功能：通过HTTP请求检查服务器是否已经启动并可以响应
// 参数：addr-服务器地址，retryCount-重试次数，interval-重试间隔
// 返回：错误信息，如果服务器就绪则返回nil
// 算法说明：
// 1. 创建HTTP客户端，设置超时时间
// 2. 循环发送GET请求到指定地址
// 3. 如果请求成功，关闭响应体并返回nil
// 4. 如果请求失败，等待指定间隔后重试
// 5. 达到最大重试次数后返回错误
func waitForServerReady(addr string, retryCount int, interval time.Duration) error {
	client := &http.Client{
		Timeout: interval,
	}
	for i := 0; i < retryCount; i++ {
		resp, err := client.Get(addr)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("server `%v` did not become ready after %d retries", addr, retryCount)
}

// Context 规划服务上下文
// 功能：包含规划服务进程的所有共享对象，替代全局变量
// 说明：道路坐标服务与规划器在会话间共享且只读，每个会话的控制状态由会话自己持有
type Context struct {
	// 关闭指令
	closed atomic.Bool

	// 运行时配置
	runtimeConfig *config.RuntimeConfig
	// 用于初始化的输入
	initRes *input.Input
	// 道路坐标服务
	roadway *roadway.Roadway
	// 规划器
	planner *planner.Planner

	// websocket服务
	server   *http.Server
	addr     string
	upgrader websocket.Upgrader
	// 服务协程退出通知
	serveCloseCh chan struct{}

	// 在线会话
	mu       sync.Mutex
	conns    map[int64]*websocket.Conn
	nextID   atomic.Int64
	sessions sync.WaitGroup
}

// NewContext 创建新的规划服务上下文
// 功能：校验配置，加载参考路点表，创建道路坐标服务与规划器
// 参数：
//   - cacheDir: 缓存目录
//   - c: 配置对象
//
// 返回：初始化完成的Context实例
// 说明：任一步失败都会panic，服务不能在配置或地图有误时启动
func NewContext(cacheDir string, c config.Config) *Context {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panicf("invalid config: %v", err)
	}
	// 下载规划服务启动所需的数据
	initRes := input.Init(rc.All, cacheDir)
	rw, err := roadway.New(initRes.Waypoints, rc.All.Input.MaxS)
	if err != nil {
		log.Panicf("invalid map: %v", err)
	}
	ctx := newContext(rc, rw)
	ctx.initRes = initRes
	return ctx
}

func newContext(rc *config.RuntimeConfig, rw *roadway.Roadway) *Context {
	return &Context{
		runtimeConfig: rc,
		roadway:       rw,
		planner:       planner.New(rw, rc.Mode),
		upgrader: websocket.Upgrader{
			// 驾驶模拟器不是浏览器，不校验Origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		serveCloseCh: make(chan struct{}),
		conns:        make(map[int64]*websocket.Conn),
	}
}

func (ctx *Context) GetInput() *input.Input {
	return ctx.initRes
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Roadway() *roadway.Roadway {
	return ctx.roadway
}

func (ctx *Context) Planner() *planner.Planner {
	return ctx.planner
}

// Addr 实际监听地址，Start之后有效
func (ctx *Context) Addr() string {
	return ctx.addr
}

// Start 启动websocket服务
// 功能：监听指定地址，每个websocket连接对应一个会话协程
// 参数：listen-监听地址
// 返回：监听失败或服务未能就绪时的错误
// 算法说明：
// 1. 路径/升级为websocket连接，healthPath用于就绪检查
// 2. 在独立协程中提供服务
// 3. 通过HTTP请求等待服务就绪
func (ctx *Context) Start(listen string) error {
	mux := http.NewServeMux()
	mux.HandleFunc(healthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", ctx.serveWebsocket)
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", listen, err)
	}
	ctx.addr = ln.Addr().String()
	ctx.server = &http.Server{Handler: mux}
	go func() {
		if err := ctx.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("failed to serve: %v", err)
		}
		close(ctx.serveCloseCh)
	}()
	if err := waitForServerReady("http://"+ctx.addr+healthPath, 10, 100*time.Millisecond); err != nil {
		return err
	}
	log.Infof("listening on %s", ctx.addr)
	return nil
}

// serveWebsocket 将HTTP连接升级为websocket并运行会话
func (ctx *Context) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	if ctx.closed.Load() {
		http.Error(w, "closed", http.StatusServiceUnavailable)
		return
	}
	conn, err := ctx.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("upgrade %s: %v", r.RemoteAddr, err)
		return
	}
	s := ctx.newSession()
	ctx.mu.Lock()
	if ctx.closed.Load() {
		ctx.mu.Unlock()
		conn.Close()
		return
	}
	ctx.conns[s.id] = conn
	ctx.sessions.Add(1)
	ctx.mu.Unlock()
	go func() {
		defer ctx.sessions.Done()
		defer func() {
			ctx.mu.Lock()
			delete(ctx.conns, s.id)
			ctx.mu.Unlock()
			conn.Close()
		}()
		s.serve(conn)
	}()
}

// Close 关闭服务
// 功能：停止接受新连接，关闭所有在线会话并等待会话协程退出
// 说明：可重复调用
func (ctx *Context) Close() {
	if ctx.closed.Swap(true) {
		return
	}
	if ctx.server != nil {
		c, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := ctx.server.Shutdown(c); err != nil {
			log.Warnf("shutdown: %v", err)
		}
		// wait for graceful stop
		<-ctx.serveCloseCh
	}
	// 已升级的websocket连接不受Shutdown管理
	ctx.mu.Lock()
	for _, conn := range ctx.conns {
		conn.Close()
	}
	ctx.mu.Unlock()
	ctx.sessions.Wait()
	log.Info("planner service closed")
}
