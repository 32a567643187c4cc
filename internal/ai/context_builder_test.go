package ai

import (
	"fmt"
	"reflect"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"medkit/internal/model/chat"
)

func TestContextBuilder_Build(t *testing.T) {
	Convey("ContextBuilder.Build 从完整历史派生有界上下文", t, func() {
		Convey("空历史返回空窗口，系统提示词保留", func() {
			builder := NewContextBuilder("你是医学助手", 10, 0)
			bctx := builder.Build(nil)

			So(bctx.System, ShouldEqual, "你是医学助手")
			So(bctx.Turns, ShouldBeEmpty)
		})

		Convey("不设限时返回完整历史", func() {
			builder := NewContextBuilder("", 0, 0)
			turns := makeTurns(7)

			bctx := builder.Build(turns)
			So(len(bctx.Turns), ShouldEqual, 7)
			So(bctx.Turns[0].Content, ShouldEqual, turns[0].Content)
			So(bctx.Turns[6].Content, ShouldEqual, turns[6].Content)
		})

		Convey("超过消息数上限时从最旧开始丢弃", func() {
			builder := NewContextBuilder("", 4, 0)
			turns := makeTurns(10)

			bctx := builder.Build(turns)
			So(len(bctx.Turns), ShouldEqual, 4)
			// 保留的是最后4条，顺序不变
			So(bctx.Turns[0].Content, ShouldEqual, turns[6].Content)
			So(bctx.Turns[3].Content, ShouldEqual, turns[9].Content)
		})

		Convey("相同输入必然产出相同窗口", func() {
			builder := NewContextBuilder("系统提示", 5, 100)
			turns := makeTurns(12)

			first := builder.Build(turns)
			second := builder.Build(turns)
			So(reflect.DeepEqual(first, second), ShouldBeTrue)
		})

		Convey("窗口只截断最旧消息，即使最后一条是assistant", func() {
			builder := NewContextBuilder("", 1, 0)
			turns := []chat.Turn{
				chat.NewUserTurn("这个患者的肌酐偏高说明什么"),
				chat.NewAssistantTurn("可能提示肾功能受损，建议复查"),
			}

			// 窗口被压到只剩assistant回复时，必须向前扩回到最近的医生消息
			bctx := builder.Build(turns)
			So(len(bctx.Turns), ShouldEqual, 2)
			So(bctx.Turns[0].Role, ShouldEqual, chat.RoleUser)
		})

		Convey("token预算极小时仍保留最近一条医生消息", func() {
			builder := NewContextBuilder("", 0, 1)
			turns := []chat.Turn{
				chat.NewUserTurn("患者主诉持续性胸痛三天，伴有夜间盗汗"),
				chat.NewAssistantTurn("建议完善心电图和胸部CT检查"),
				chat.NewUserTurn("心电图显示ST段压低，下一步怎么处理"),
			}

			bctx := builder.Build(turns)
			So(len(bctx.Turns), ShouldBeGreaterThanOrEqualTo, 1)
			last := bctx.Turns[len(bctx.Turns)-1]
			So(last.Role, ShouldEqual, chat.RoleUser)
			So(last.Content, ShouldEqual, turns[2].Content)
		})

		Convey("返回的窗口是拷贝，修改不影响原历史", func() {
			builder := NewContextBuilder("", 0, 0)
			turns := makeTurns(3)

			bctx := builder.Build(turns)
			bctx.Turns[0].Content = "modified"
			So(turns[0].Content, ShouldNotEqual, "modified")
		})
	})
}

func TestContextBuilder_EstimateTokens(t *testing.T) {
	Convey("EstimateTokens 估算文本token数", t, func() {
		builder := NewContextBuilder("", 0, 0)

		Convey("空文本为0", func() {
			So(builder.EstimateTokens(""), ShouldEqual, 0)
		})

		Convey("非空文本大于0", func() {
			So(builder.EstimateTokens("患者血压偏高"), ShouldBeGreaterThan, 0)
			So(builder.EstimateTokens("hello world"), ShouldBeGreaterThan, 0)
		})

		Convey("更长的文本估算值不小于短文本", func() {
			short := builder.EstimateTokens("头痛")
			long := builder.EstimateTokens("患者自述持续性头痛一周，伴有恶心呕吐，既往无类似病史")
			So(long, ShouldBeGreaterThanOrEqualTo, short)
		})
	})
}

// makeTurns 构造 user/assistant 交替的测试历史
func makeTurns(n int) []chat.Turn {
	turns := make([]chat.Turn, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			turns = append(turns, chat.NewUserTurn(fmt.Sprintf("问题 %d", i)))
		} else {
			turns = append(turns, chat.NewAssistantTurn(fmt.Sprintf("回答 %d", i)))
		}
	}
	return turns
}
