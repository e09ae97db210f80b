package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
)

// Расширение архивированных файлов выгрузок
const Extension = ".sz"

// CompressFile сжимает файл в потоковом snappy-формате
func CompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("не удалось открыть исходный файл %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("не удалось создать файл архива %s: %w", dst, err)
	}
	defer out.Close()

	writer := snappy.NewBufferedWriter(out)
	if _, err := io.Copy(writer, in); err != nil {
		writer.Close()
		return fmt.Errorf("ошибка при сжатии файла %s: %w", src, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("ошибка при завершении записи архива %s: %w", dst, err)
	}

	return nil
}

// DecompressFile распаковывает файл из потокового snappy-формата
func DecompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("не удалось открыть файл архива %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("не удалось создать файл %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, snappy.NewReader(in)); err != nil {
		return fmt.Errorf("ошибка при распаковке файла %s: %w", src, err)
	}

	return nil
}

// ArchiveExtract сжимает обработанный файл выгрузки в каталог архива
// и удаляет оригинал. Возвращает путь к файлу архива
func ArchiveExtract(path, archiveDir string) (string, error) {
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("не удалось создать каталог архива %s: %w", archiveDir, err)
	}

	dst := filepath.Join(archiveDir, filepath.Base(path)+Extension)

	if err := CompressFile(path, dst); err != nil {
		return "", err
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("не удалось удалить обработанный файл %s: %w", path, err)
	}

	return dst, nil
}
