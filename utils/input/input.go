package input

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tsinghua-fib-lab/highway-planner/roadway"
	"github.com/tsinghua-fib-lab/highway-planner/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const downloadTimeout = 30 * time.Second

// Input 输入数据
// 功能：存储规划服务启动所需的输入数据
type Input struct {
	Waypoints []roadway.Waypoint // 参考路点表，按s递增
}

// Init 加载数据
// 功能：根据配置加载参考路点表
// 参数：config-配置对象，cacheDir-缓存目录
// 返回：加载完成的输入数据指针
// 算法说明：
// 1. 缓存检查：验证缓存目录的有效性
// 2. 文件加载：配置了文件路径时直接从文件读取
// 3. 数据库加载：否则连接MongoDB，经由缓存读取路点集合
// 说明：加载失败时panic，规划服务不能在没有路点表的情况下运行
func Init(config config.Config, cacheDir string) (res *Input) {
	useCache := preCheckCache(cacheDir)
	if !useCache {
		cacheDir = ""
	}
	res = &Input{}

	if file := config.Input.Map.File; file != "" {
		wps, err := loadFile(file)
		if err != nil {
			log.Panicf("failed to load map from file: %v", err)
		}
		res.Waypoints = wps
	} else {
		var client *mongo.Client
		if config.Input.URI != "" && !config.Input.Map.OnlyCache {
			client = newClient(config.Input.URI)
			defer client.Disconnect(context.Background())
		}
		wps, err := loadWithCache(client, config.Input.Map, cacheDir)
		if err != nil {
			log.Panicf("failed to load map: %v", err)
		}
		res.Waypoints = wps
	}
	log.Infof("Waypoint: %v", len(res.Waypoints))
	return
}

// newClient 连接MongoDB
func newClient(uri string) *mongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Panicf("failed to connect to mongo: %v", err)
	}
	return client
}

// download 从MongoDB集合下载路点，按s升序排列
func download(ctx context.Context, coll *mongo.Collection) ([]roadway.Waypoint, error) {
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "s", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	var wps []roadway.Waypoint
	if err := cursor.All(ctx, &wps); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return wps, nil
}

// loadWithCache 经由缓存加载路点
// 功能：优先读取本地缓存，缓存不存在时从MongoDB下载并写入缓存
// 参数：client-MongoDB客户端（OnlyCache时可为nil），inputPath-输入路径配置，cacheDir-缓存目录（为空则禁用缓存）
// 返回：路点列表
// 算法说明：
// 1. 缓存可用且缓存文件存在时直接读取
// 2. 否则（OnlyCache时报错）从MongoDB下载
// 3. 缓存可用时将下载结果写入缓存文件
func loadWithCache(client *mongo.Client, inputPath config.InputPath, cacheDir string) ([]roadway.Waypoint, error) {
	var cachePath string
	if cacheDir != "" {
		cachePath = filepath.Join(cacheDir, inputPath.GetCachePath())
		if wps, err := loadFile(cachePath); err == nil {
			log.Infof("load %s.%s from cache %s", inputPath.GetDb(), inputPath.GetColl(), cachePath)
			return wps, nil
		} else {
			log.Debugf("cache %s unavailable: %v", cachePath, err)
		}
	}
	if inputPath.OnlyCache {
		return nil, fmt.Errorf("only_cache is set but no cache for %s.%s", inputPath.GetDb(), inputPath.GetColl())
	}
	if client == nil {
		return nil, fmt.Errorf("no mongo uri to fetch %s.%s", inputPath.GetDb(), inputPath.GetColl())
	}
	log.Infof("start fetching from %s.%s", inputPath.GetDb(), inputPath.GetColl())
	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()
	wps, err := download(ctx, client.Database(inputPath.GetDb()).Collection(inputPath.GetColl()))
	if err != nil {
		return nil, err
	}
	log.Infof("finish fetching from %s.%s", inputPath.GetDb(), inputPath.GetColl())
	if cachePath != "" {
		if err := saveFile(cachePath, wps); err != nil {
			log.Errorf("failed to write cache %s: %v", cachePath, err)
		}
	}
	return wps, nil
}
