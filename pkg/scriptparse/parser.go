// Package scriptparse extracts timed narration segments from LLM-generated
// script text. Supported paragraph forms:
//
//	(0:00 - 0:06) 内容...
//	0-6s 内容...
//	第0帧：开场画面内容...
//	最后一帧：结束画面内容...
package scriptparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Segment struct {
	Id        string
	TimeStart float64
	TimeEnd   float64
	Content   string
	// IsFrame0 marks the opening-frame paragraph, which is not a narration
	// segment but seeds the synthetic first-frame keyframe.
	IsFrame0 bool
	// IsLastFrame marks the closing-frame paragraph; the asset exists but is
	// never used as a last-frame input to any video call.
	IsLastFrame bool
}

var (
	paragraphSplit = regexp.MustCompile(`\n\s*\n+`)
	// (M:SS - M:SS) 内容
	clockPattern = regexp.MustCompile(`(?s)^\((\d+):(\d+)\s*-\s*(\d+):(\d+)\)\s*(.+)$`)
	// 0-6s 内容 / 0s-6s 内容 / 0~6s 内容
	secondsPattern = regexp.MustCompile(`(?s)^(\d+)s?\s*[-~]\s*(\d+)s?\s*(.+)$`)
)

var frame0Prefixes = []string{"第0帧：", "第0帧:", "开场画面：", "开场画面:"}
var lastFramePrefixes = []string{"最后一帧：", "最后一帧:"}

// Parse splits script content into segments. segmentDuration is the fallback
// slot length in seconds for paragraphs without a recognizable time range.
func Parse(content string, segmentDuration int) []Segment {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if segmentDuration <= 0 {
		segmentDuration = 6
	}

	var segments []Segment
	segmentIndex := 0

	appendTimed := func(start, end float64, text string) {
		segments = append(segments, Segment{
			Id:        fmt.Sprintf("segment_%d", segmentIndex),
			TimeStart: start,
			TimeEnd:   end,
			Content:   strings.TrimSpace(text),
		})
		segmentIndex++
	}

	for _, paragraph := range paragraphSplit.Split(content, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if text, ok := stripPrefix(paragraph, frame0Prefixes); ok {
			segments = append(segments, Segment{
				Id:       "frame_0",
				Content:  text,
				IsFrame0: true,
			})
			continue
		}
		if text, ok := stripPrefix(paragraph, lastFramePrefixes); ok {
			segments = append(segments, Segment{
				Id:          "last_frame",
				Content:     text,
				IsLastFrame: true,
			})
			continue
		}

		if m := clockPattern.FindStringSubmatch(paragraph); m != nil {
			startMin, _ := strconv.Atoi(m[1])
			startSec, _ := strconv.Atoi(m[2])
			endMin, _ := strconv.Atoi(m[3])
			endSec, _ := strconv.Atoi(m[4])

			// 秒数部分为0且分钟部分小于60时按秒数表示法解析：
			// (0:00 - 6:00) 表示 0-6 秒，(0:06 - 0:12) 表示 6-12 秒。
			var start, end int
			if startSec == 0 && endSec == 0 && startMin < 60 && endMin < 60 {
				start, end = startMin, endMin
			} else {
				start = startMin*60 + startSec
				end = endMin*60 + endSec
			}
			appendTimed(float64(start), float64(end), m[5])
			continue
		}

		if m := secondsPattern.FindStringSubmatch(paragraph); m != nil {
			start, _ := strconv.Atoi(m[1])
			end, _ := strconv.Atoi(m[2])
			text := strings.TrimSpace(m[3])
			text = strings.TrimPrefix(text, ":")
			text = strings.TrimPrefix(text, "：")
			appendTimed(float64(start), float64(end), text)
			continue
		}

		// 无法识别时间格式，按顺序分配默认时间段
		start := segmentIndex * segmentDuration
		appendTimed(float64(start), float64(start+segmentDuration), paragraph)
	}

	if !hasNarration(segments) {
		// 整段脚本没有任何可识别段落，退化为逐行解析
		lineSegments := parseLines(content, segmentDuration)
		segments = append(segments, lineSegments...)
	}

	return segments
}

func parseLines(content string, segmentDuration int) []Segment {
	var segments []Segment
	index := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, ok := stripPrefix(line, frame0Prefixes); ok {
			continue
		}
		if _, ok := stripPrefix(line, lastFramePrefixes); ok {
			continue
		}
		start := index * segmentDuration
		segments = append(segments, Segment{
			Id:        fmt.Sprintf("segment_%d", index),
			TimeStart: float64(start),
			TimeEnd:   float64(start + segmentDuration),
			Content:   line,
		})
		index++
	}
	return segments
}

func stripPrefix(paragraph string, prefixes []string) (string, bool) {
	for _, prefix := range prefixes {
		if strings.HasPrefix(paragraph, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(paragraph, prefix)), true
		}
	}
	return "", false
}

func hasNarration(segments []Segment) bool {
	for _, s := range segments {
		if !s.IsFrame0 && !s.IsLastFrame {
			return true
		}
	}
	return false
}

// Narration returns only the timed narration segments, excluding the opening
// and closing frame paragraphs.
func Narration(segments []Segment) []Segment {
	var out []Segment
	for _, s := range segments {
		if !s.IsFrame0 && !s.IsLastFrame {
			out = append(out, s)
		}
	}
	return out
}

// Frame0 returns the opening-frame segment, if present.
func Frame0(segments []Segment) (Segment, bool) {
	for _, s := range segments {
		if s.IsFrame0 {
			return s, true
		}
	}
	return Segment{}, false
}
