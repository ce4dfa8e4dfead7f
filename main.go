package main

import (
	"encoding/base64"
	"flag"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/highway-planner/task"
	"github.com/tsinghua-fib-lab/highway-planner/utils/config"
	"gopkg.in/yaml.v2"
)

var (
	// websocket监听地址，非空时覆盖配置文件中的server.listen
	listen = flag.String("listen", "", "websocket listening address (overrides server.listen), e.g. :4567")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 数据加载input的缓存地址，设置为空则禁用缓存功能
	// 缓存：将MongoDB中的路点表保存到本地文件系统，并总是先试图从文件系统中加载
	cacheDir = flag.String("cache", "data/", "input cache dir path (empty means disable cache)")
	// 离线运行：不启动websocket服务，在进程内模拟执行端
	offline = flag.Bool("offline", false, "run the built-in simulator instead of serving")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "planner-server")
)

const defaultOfflineSteps = 3000

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置，未指定时使用默认配置
	c := config.Default()
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Info("no config specified, use default config")
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	if *listen != "" {
		c.Server.Listen = *listen
	}
	log.Infof("%+v", c)

	t := task.NewContext(*cacheDir, c)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if *offline || c.Simulation.Steps > 0 {
		steps := c.Simulation.Steps
		if steps <= 0 {
			steps = defaultOfflineSteps
		}
		go func() {
			<-sigCh
			t.Close()
		}()
		t.RunOffline(steps)
		return
	}

	if err := t.Start(c.Server.Listen); err != nil {
		log.Panicf("failed to start: %v", err)
	}
	sig := <-sigCh
	log.Infof("received %v, shutting down", sig)
	t.Close()
}
