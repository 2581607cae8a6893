package jsonl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

// FileModeReadOnly rw-r--r-- (擁有者讀寫，其他人唯讀)
const FileModeReadOnly fs.FileMode = 0644

// File 一行一筆 JSON 的檔案
type File struct {
	file *os.File
	mu   sync.Mutex
}

// Open 開啟既有檔案 (唯讀)
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{file: file}, nil
}

// Create 開啟或建立檔案，寫入時附加在檔尾
// O_RDWR讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
// O_TRUNC 清空既有內容
func Create(path string) (*File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR|os.O_TRUNC, FileModeReadOnly)
	if err != nil {
		return nil, err
	}
	return &File{file: file}, nil
}

// Append 寫入一筆資料並刷入硬碟
func (f *File) Append(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := json.NewEncoder(f.file).Encode(v); err != nil {
		return err
	}
	return f.file.Sync()
}

// Close 關閉檔案
func (f *File) Close() error {
	return f.file.Close()
}

// ReadAll 從頭讀取所有資料
// callback 每次收到一筆 raw JSON，避免一次將所有資料載入記憶體
func (f *File) ReadAll(callback func(index int, raw []byte) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// 確保從頭讀取
	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return Decode(f.file, callback)
}

// Decode 依序解析 r 中的 JSON 值
//
// 參數:
//
//	r: 輸入，值之間以換行 (或任何空白) 分隔
//	callback: 收到第 index 筆 (從 0 開始) 的 raw JSON，回傳錯誤即中止
//
// 回傳:
//
//	error: 語法錯誤 (附上筆數) 或 callback 的錯誤
func Decode(r io.Reader, callback func(index int, raw []byte) error) error {
	decoder := json.NewDecoder(r)
	for index := 0; ; index++ {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("record %d: %w", index, err)
		}
		if err := callback(index, raw); err != nil {
			return err
		}
	}
}

// Encode 將 values 逐筆寫成一行一筆 JSON
func Encode[T any](w io.Writer, values []T) error {
	encoder := json.NewEncoder(w)
	for i := range values {
		if err := encoder.Encode(values[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
