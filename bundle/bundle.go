package bundle

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// 操作捆绑：面向结算层的可编程交易构建器
//
// **设计**：
// 一次编译产出一个捆绑：有序命令列表 + 去重后的输入列表。
// 命令之间通过结果引用衔接（前一条命令的输出作为后一条的参数），
// 整个捆绑原子执行——任何一条命令失败则全部回滚。
//
// 构建器只负责组装结构并序列化为草稿 JSON，签名与提交在调用方。

// ArgumentKind 参数种类
type ArgumentKind string

const (
	// KindGas gas 币参数
	KindGas ArgumentKind = "GasCoin"
	// KindInput 输入列表中的一项
	KindInput ArgumentKind = "Input"
	// KindResult 某条命令的结果
	KindResult ArgumentKind = "Result"
	// KindNestedResult 某条命令结果中的第 n 项
	KindNestedResult ArgumentKind = "NestedResult"
)

// Argument 命令参数：gas 币、输入引用或前序命令的结果引用
type Argument struct {
	Kind ArgumentKind `json:"kind"`
	// Index 输入下标或命令下标
	Index int `json:"index,omitempty"`
	// ResultIndex 嵌套结果中的项下标（仅 NestedResult）
	ResultIndex int `json:"resultIndex,omitempty"`
}

// InputKind 输入种类
type InputKind string

const (
	// InputPure 纯值（u64 / 地址等）
	InputPure InputKind = "pure"
	// InputObject 独占对象引用
	InputObject InputKind = "object"
	// InputSharedObject 共享对象引用
	InputSharedObject InputKind = "sharedObject"
)

// Input 捆绑输入
type Input struct {
	Kind InputKind `json:"kind"`
	// ValueType 纯值类型（"u64" / "address"）
	ValueType string `json:"valueType,omitempty"`
	// Value 纯值内容（u64 以十进制字符串表示）
	Value string `json:"value,omitempty"`
	// ObjectID 对象 ID（对象类输入）
	ObjectID string `json:"objectId,omitempty"`
	// Mutable 共享对象是否以可变方式借用
	Mutable bool `json:"mutable,omitempty"`
}

// Command 单条命令
type Command struct {
	// Type 命令类型：SplitCoins / MergeCoins / TransferObjects / MoveCall
	Type string `json:"type"`
	// Coin SplitCoins 的被拆分币 / MergeCoins 的目标币
	Coin *Argument `json:"coin,omitempty"`
	// Amounts SplitCoins 的拆分金额
	Amounts []Argument `json:"amounts,omitempty"`
	// Sources MergeCoins 的被合并币
	Sources []Argument `json:"sources,omitempty"`
	// Objects TransferObjects 的被转移对象
	Objects []Argument `json:"objects,omitempty"`
	// Recipient TransferObjects 的接收地址
	Recipient *Argument `json:"recipient,omitempty"`
	// Target MoveCall 的完整目标（package::module::function）
	Target string `json:"target,omitempty"`
	// TypeArguments MoveCall 的类型参数
	TypeArguments []string `json:"typeArguments,omitempty"`
	// Arguments MoveCall 的值参数
	Arguments []Argument `json:"arguments,omitempty"`
}

// ClockObjectID 链上时钟共享对象（所有网络固定）
const ClockObjectID = "0x6"

// Bundle 操作捆绑构建器
type Bundle struct {
	sender   string
	inputs   []Input
	commands []Command
	// inputIndex 输入去重表：序列化后的输入 → 下标
	inputIndex map[string]int
}

// New 创建空捆绑
func New(sender string) *Bundle {
	return &Bundle{
		sender:     sender,
		inputIndex: make(map[string]int),
	}
}

// Sender 返回发送者地址
func (b *Bundle) Sender() string {
	return b.sender
}

// IsEmpty 捆绑是否不含任何命令
func (b *Bundle) IsEmpty() bool {
	return len(b.commands) == 0
}

// Commands 返回命令列表（只读视图）
func (b *Bundle) Commands() []Command {
	return b.commands
}

// Inputs 返回输入列表（只读视图）
func (b *Bundle) Inputs() []Input {
	return b.inputs
}

// Gas 返回 gas 币参数
func (b *Bundle) Gas() Argument {
	return Argument{Kind: KindGas}
}

// addInput 登记输入并去重，返回其参数引用
func (b *Bundle) addInput(in Input) Argument {
	key := string(in.Kind) + "|" + in.ValueType + "|" + in.Value + "|" + in.ObjectID + "|" + strconv.FormatBool(in.Mutable)
	if idx, ok := b.inputIndex[key]; ok {
		return Argument{Kind: KindInput, Index: idx}
	}
	idx := len(b.inputs)
	b.inputs = append(b.inputs, in)
	b.inputIndex[key] = idx
	return Argument{Kind: KindInput, Index: idx}
}

// PureU64 登记一个 u64 纯值输入
func (b *Bundle) PureU64(v uint64) Argument {
	return b.addInput(Input{
		Kind:      InputPure,
		ValueType: "u64",
		Value:     strconv.FormatUint(v, 10),
	})
}

// PureAddress 登记一个地址纯值输入
func (b *Bundle) PureAddress(addr string) Argument {
	return b.addInput(Input{
		Kind:      InputPure,
		ValueType: "address",
		Value:     addr,
	})
}

// Object 登记一个独占对象输入
func (b *Bundle) Object(objectID string) Argument {
	return b.addInput(Input{
		Kind:     InputObject,
		ObjectID: objectID,
	})
}

// SharedObject 登记一个共享对象输入
func (b *Bundle) SharedObject(objectID string, mutable bool) Argument {
	return b.addInput(Input{
		Kind:     InputSharedObject,
		ObjectID: objectID,
		Mutable:  mutable,
	})
}

// Clock 登记链上时钟共享对象（只读）
func (b *Bundle) Clock() Argument {
	return b.SharedObject(ClockObjectID, false)
}

// SplitCoins 追加拆币命令，返回与 amounts 一一对应的新币引用
func (b *Bundle) SplitCoins(coin Argument, amounts []Argument) []Argument {
	cmdIdx := len(b.commands)
	b.commands = append(b.commands, Command{
		Type:    "SplitCoins",
		Coin:    &coin,
		Amounts: amounts,
	})
	results := make([]Argument, len(amounts))
	for i := range amounts {
		results[i] = Argument{Kind: KindNestedResult, Index: cmdIdx, ResultIndex: i}
	}
	return results
}

// MergeCoins 追加合币命令，sources 并入 destination
func (b *Bundle) MergeCoins(destination Argument, sources []Argument) {
	b.commands = append(b.commands, Command{
		Type:    "MergeCoins",
		Coin:    &destination,
		Sources: sources,
	})
}

// TransferObjects 追加对象转移命令
func (b *Bundle) TransferObjects(objects []Argument, recipient Argument) {
	b.commands = append(b.commands, Command{
		Type:      "TransferObjects",
		Objects:   objects,
		Recipient: &recipient,
	})
}

// MoveCall 追加合约调用命令，返回其结果引用
func (b *Bundle) MoveCall(target string, typeArguments []string, arguments []Argument) Argument {
	cmdIdx := len(b.commands)
	b.commands = append(b.commands, Command{
		Type:          "MoveCall",
		Target:        target,
		TypeArguments: typeArguments,
		Arguments:     arguments,
	})
	return Argument{Kind: KindResult, Index: cmdIdx}
}

// Draft 草稿 JSON 的顶层结构
type Draft struct {
	Version  int       `json:"version"`
	Sender   string    `json:"sender"`
	Inputs   []Input   `json:"inputs"`
	Commands []Command `json:"commands"`
}

// MarshalDraft 序列化为待签名的草稿 JSON
func (b *Bundle) MarshalDraft() ([]byte, error) {
	if b.sender == "" {
		return nil, fmt.Errorf("bundle sender is empty")
	}
	draft := Draft{
		Version:  1,
		Sender:   b.sender,
		Inputs:   b.inputs,
		Commands: b.commands,
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("marshal draft failed: %w", err)
	}
	return data, nil
}
