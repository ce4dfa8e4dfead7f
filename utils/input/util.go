package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/highway-planner/roadway"
)

// ReadWaypoints 读取路点表
// 功能：解析以空白分隔的路点表，每行依次为 x y s dx dy
// 参数：r-数据源
// 返回：路点列表，或带行号的解析错误
// 说明：空行与以#开头的行被忽略
func ReadWaypoints(r io.Reader) ([]roadway.Waypoint, error) {
	var wps []roadway.Waypoint
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 5 {
			return nil, fmt.Errorf("line %d: expect 5 fields, got %d", line, len(fields))
		}
		var v [5]float64
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			v[i] = x
		}
		wps = append(wps, roadway.Waypoint{X: v[0], Y: v[1], S: v[2], DX: v[3], DY: v[4]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return wps, nil
}

// WriteWaypoints 按ReadWaypoints的格式写出路点表
func WriteWaypoints(w io.Writer, wps []roadway.Waypoint) error {
	lines := lo.Map(wps, func(p roadway.Waypoint, _ int) string {
		return strings.Join(lo.Map([]float64{p.X, p.Y, p.S, p.DX, p.DY}, func(v float64, _ int) string {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}), " ")
	})
	for _, l := range lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func loadFile(path string) ([]roadway.Waypoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	wps, err := ReadWaypoints(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wps, nil
}

func saveFile(path string, wps []roadway.Waypoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := WriteWaypoints(w, wps); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// preCheckCache 预检查缓存目录
// 功能：验证输入缓存目录的有效性，决定是否启用缓存功能
// 参数：cacheDir-缓存目录路径
// 返回：true表示启用缓存，false表示禁用缓存
func preCheckCache(cacheDir string) bool {
	if cacheDir == "" {
		log.Info("disable input cache")
		return false
	} else {
		if stat, err := os.Stat(cacheDir); err == nil && stat.IsDir() {
			// 文件夹存在
			log.Infof("enable input cache at %s", cacheDir)
			return true
		} else {
			log.Errorf("disable input cache because invalid dir %s (not exist or file)", cacheDir)
			return false
		}
	}
}
