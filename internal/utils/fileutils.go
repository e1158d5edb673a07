package utils

import (
	"os"
	"path/filepath"
)

type FileUtils struct{}

func NewFileUtils() *FileUtils {
	return &FileUtils{}
}

func (fu *FileUtils) EnsureDirectory(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, 0755)
	}
	return nil
}

func (fu *FileUtils) GetFileName(filePath string) string {
	return filepath.Base(filePath)
}

func (fu *FileUtils) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

func (fu *FileUtils) RemoveFile(filePath string) error {
	if filePath == "" || !fu.FileExists(filePath) {
		return nil
	}
	return os.Remove(filePath)
}
