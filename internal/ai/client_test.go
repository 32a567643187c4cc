package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	. "github.com/smartystreets/goconvey/convey"

	"medkit/internal/model/chat"
)

func TestClient_Infer(t *testing.T) {
	Convey("Client.Infer 执行一次推理调用", t, func() {
		bctx := &BoundedContext{System: "你是医学助手"}

		Convey("空消息返回ErrInvalidInput", func() {
			client := NewClientWithGenerator(GeneratorFunc(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				t.Fatal("generator should not be called")
				return nil, nil
			}), time.Second)

			_, err := client.Infer(context.Background(), bctx, "   ")
			So(err, ShouldEqual, ErrInvalidInput)
		})

		Convey("后端成功时返回回复内容", func() {
			client := NewClientWithGenerator(GeneratorFunc(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				return schema.AssistantMessage("布洛芬常规剂量为每次400mg", nil), nil
			}), time.Second)

			reply, err := client.Infer(context.Background(), bctx, "布洛芬的常规剂量是多少")
			So(err, ShouldBeNil)
			So(reply.Content, ShouldEqual, "布洛芬常规剂量为每次400mg")
			So(reply.LatencyMs, ShouldBeGreaterThanOrEqualTo, 0)
		})

		Convey("后端报错时返回backend_error，不重试", func() {
			calls := 0
			client := NewClientWithGenerator(GeneratorFunc(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				calls++
				return nil, errors.New("connection refused")
			}), time.Second)

			_, err := client.Infer(context.Background(), bctx, "你好")
			var infErr *InferenceError
			So(errors.As(err, &infErr), ShouldBeTrue)
			So(infErr.Reason, ShouldEqual, ReasonBackend)
			So(calls, ShouldEqual, 1)
		})

		Convey("后端超时时返回timeout", func() {
			client := NewClientWithGenerator(GeneratorFunc(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}), 20*time.Millisecond)

			_, err := client.Infer(context.Background(), bctx, "你好")
			var infErr *InferenceError
			So(errors.As(err, &infErr), ShouldBeTrue)
			So(infErr.Reason, ShouldEqual, ReasonTimeout)
		})

		Convey("空回复视为后端失败", func() {
			client := NewClientWithGenerator(GeneratorFunc(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				return schema.AssistantMessage("", nil), nil
			}), time.Second)

			_, err := client.Infer(context.Background(), bctx, "你好")
			var infErr *InferenceError
			So(errors.As(err, &infErr), ShouldBeTrue)
			So(infErr.Reason, ShouldEqual, ReasonBackend)
		})
	})
}

func TestBuildMessages(t *testing.T) {
	Convey("buildMessages 把有界上下文转换为消息序列", t, func() {
		Convey("系统提示词在最前面", func() {
			bctx := &BoundedContext{System: "你是医学助手"}
			messages := buildMessages(bctx, "你好")

			So(len(messages), ShouldEqual, 2)
			So(messages[0].Role, ShouldEqual, schema.System)
			So(messages[1].Role, ShouldEqual, schema.User)
			So(messages[1].Content, ShouldEqual, "你好")
		})

		Convey("历史窗口已包含本条消息时不重复追加", func() {
			bctx := &BoundedContext{
				Turns: []chat.Turn{
					chat.NewUserTurn("患者发热39度怎么处理"),
				},
			}
			messages := buildMessages(bctx, "患者发热39度怎么处理")

			So(len(messages), ShouldEqual, 1)
			So(messages[0].Role, ShouldEqual, schema.User)
		})

		Convey("窗口以assistant结尾时追加本条消息", func() {
			bctx := &BoundedContext{
				Turns: []chat.Turn{
					chat.NewUserTurn("患者发热39度怎么处理"),
					chat.NewAssistantTurn("建议物理降温并完善血常规"),
				},
			}
			messages := buildMessages(bctx, "血常规显示白细胞升高")

			So(len(messages), ShouldEqual, 3)
			So(messages[2].Role, ShouldEqual, schema.User)
			So(messages[2].Content, ShouldEqual, "血常规显示白细胞升高")
		})

		Convey("角色映射保持插入顺序", func() {
			bctx := &BoundedContext{
				System: "系统提示",
				Turns: []chat.Turn{
					chat.NewUserTurn("问题一"),
					chat.NewAssistantTurn("回答一"),
					chat.NewUserTurn("问题二"),
				},
			}
			messages := buildMessages(bctx, "问题二")

			So(len(messages), ShouldEqual, 4)
			So(messages[1].Role, ShouldEqual, schema.User)
			So(messages[2].Role, ShouldEqual, schema.Assistant)
			So(messages[3].Role, ShouldEqual, schema.User)
		})
	})
}
