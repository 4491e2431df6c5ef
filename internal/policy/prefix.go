// Package policy — единственное место, где вычисляется и проверяется
// эффективный префикс хранилища для операции. Исторически каждая ручка
// делала это по-своему; теперь любая проверка принадлежности идёт
// только через Authorize.
package policy

import (
	"strings"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

// Operation — операция над хранилищем, для которой запрашивается префикс.
type Operation int

const (
	OpList Operation = iota
	OpUpload
	OpDownload
	OpDelete
	OpDeleteTree
	OpCreateFolder
	OpZip
)

func (op Operation) String() string {
	switch op {
	case OpList:
		return "list"
	case OpUpload:
		return "upload"
	case OpDownload:
		return "download"
	case OpDelete:
		return "delete"
	case OpDeleteTree:
		return "delete_tree"
	case OpCreateFolder:
		return "create_folder"
	case OpZip:
		return "zip"
	}
	return "unknown"
}

// folderShaped — операции, чей аргумент всегда префикс-папка:
// перед проверкой принадлежности гарантируем завершающий "/".
func (op Operation) folderShaped() bool {
	switch op {
	case OpUpload, OpDeleteTree, OpCreateFolder, OpZip:
		return true
	}
	return false
}

// Policy вычисляет эффективный префикс для пары (субъект, запрошенный путь).
// root — общий префикс деплоймента внутри бакета (S3_ROOT_PREFIX): домашние
// префиксы пользователей и все запрошенные пути живут под ним, и он
// подставляется уже после проверки принадлежности.
type Policy struct {
	root string
}

func New(rootPrefix string) *Policy {
	return &Policy{root: domain.NormalizePrefix(rootPrefix)}
}

// Authorize возвращает эффективный префикс (или ключ — для download/delete
// файла), под которым операция авторизована, либо ошибку.
//
// Правило одно для всех операций:
//  1. пустой путь означает домашний префикс субъекта;
//  2. путь, равный домашнему префиксу без завершающего "/", считается
//     равным ему (ровно один терпимый случай);
//  3. иначе путь авторизован тогда и только тогда, когда он литерально
//     начинается с домашнего префикса; пустой домашний префикс (админ)
//     пропускает всё;
//  4. отказ — ErrForbidden, без молчаливого приведения к домашнему
//     префиксу (кроме случая пустого пути из п.1).
func (p *Policy) Authorize(pr domain.Principal, requested string, op Operation) (string, error) {
	if err := validatePath(requested); err != nil {
		return "", err
	}

	home := pr.HomePrefix

	if requested == "" {
		// корень ограниченного субъекта — его домашний префикс
		requested = home
	} else {
		if op.folderShaped() && !strings.HasSuffix(requested, "/") {
			requested += "/"
		}
		if requested+"/" == home {
			requested = home
		}
	}

	if home != "" && requested != home && !strings.HasPrefix(requested, home) {
		return "", domain.ErrForbidden
	}

	return p.root + requested, nil
}

// JoinKey присоединяет имя файла к уже авторизованному префиксу.
// Имя с разделителем отвергается: ключ не должен уметь покинуть префикс.
func (p *Policy) JoinKey(effectivePrefix, filename string) (string, error) {
	if !domain.ValidObjectName(filename) {
		return "", domain.ErrBadParams
	}
	return effectivePrefix + filename, nil
}

// JoinFolder присоединяет имя новой папки: ключ-маркер заканчивается на "/".
func (p *Policy) JoinFolder(effectivePrefix, folderName string) (string, error) {
	if !domain.ValidObjectName(folderName) {
		return "", domain.ErrBadParams
	}
	return effectivePrefix + folderName + "/", nil
}

// validatePath отвергает пути, способные обмануть литеральную проверку
// принадлежности: сегменты "..", обратный слэш, ведущий "/".
func validatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, '\\') {
		return domain.ErrBadParams
	}
	if strings.HasPrefix(path, "/") {
		return domain.ErrBadParams
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return domain.ErrBadParams
		}
	}
	return nil
}
